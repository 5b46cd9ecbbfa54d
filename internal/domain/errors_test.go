package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorChains(t *testing.T) {
	tests := []struct {
		name string
		err  error
		base error
	}{
		{"dataset not found", ErrDatasetNotFound, ErrNotFound},
		{"layer not found", ErrLayerNotFound, ErrNotFound},
		{"invalid coordinate", ErrInvalidCoordinate, ErrInvalidInput},
		{"unknown projection", ErrUnknownProjection, ErrNotFound},
		{"unsupported layer", ErrUnsupportedLayer, ErrUnsupported},
		{"not ready", ErrNotReady, ErrUnavailable},
		{"storage unavailable", ErrStorageUnavailable, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.base) {
				t.Errorf("%v does not wrap %v", tt.err, tt.base)
			}
		})
	}
}

func TestTransformErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("wrapped: %w", ErrInvalidInput)
	err := &TransformError{Projection: "Goode_Homolosine", Direction: "forward", Index: 3, Err: cause}

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("TransformError does not unwrap to its cause")
	}

	var te *TransformError
	if !errors.As(error(err), &te) {
		t.Fatal("errors.As failed for *TransformError")
	}
	if te.Index != 3 || te.Direction != "forward" {
		t.Errorf("unexpected fields: %+v", te)
	}
}

func TestReprojectErrorMessage(t *testing.T) {
	err := &ReprojectError{DatasetID: "cities", Layer: "stations", Err: ErrLayerNotFound}
	want := "reproject error in dataset cities, layer stations: layer: not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	noLayer := &ReprojectError{DatasetID: "cities", Err: ErrDatasetNotFound}
	if noLayer.Error() == err.Error() {
		t.Error("layerless message should differ")
	}
	if !errors.Is(noLayer, ErrNotFound) {
		t.Error("ReprojectError does not unwrap through its cause")
	}
}

func TestStorageErrorMessage(t *testing.T) {
	err := &StorageError{Operation: "download", Key: "data/cities.gpkg", Err: ErrStorageUnavailable}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("StorageError does not unwrap to ErrUnavailable")
	}
}

func TestValidationErrorWraps(t *testing.T) {
	err := &ValidationError{Field: "latitude", Value: 95.0, Constraint: "[-90, 90]", Message: "out of range"}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError does not wrap ErrInvalidInput")
	}
}
