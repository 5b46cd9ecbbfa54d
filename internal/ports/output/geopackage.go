package output

import (
	"context"

	"github.com/jobrunner/goode/internal/domain"
)

// DatasetRepository defines the secondary port for GeoPackage data access.
type DatasetRepository interface {
	// Open opens a GeoPackage file and returns its metadata.
	Open(ctx context.Context, path string) (*domain.Dataset, error)

	// Close closes a dataset connection.
	Close(ctx context.Context, datasetID string) error

	// GetLayers returns all layers in a dataset.
	GetLayers(ctx context.Context, datasetID string) ([]domain.Layer, error)

	// ReadPoints streams the point features of a layer. The callback is
	// invoked once per feature; returning an error stops the scan.
	ReadPoints(ctx context.Context, datasetID string, layer string, fn func(domain.Feature) error) error
}

// CoordinateTransformer defines the secondary port for coordinate
// transforms between the geographic and planar frames.
type CoordinateTransformer interface {
	// Forward projects a geographic coordinate to the plane.
	Forward(ctx context.Context, g domain.Geographic) (domain.Planar, error)

	// Inverse projects a planar coordinate back to geographic coordinates.
	Inverse(ctx context.Context, p domain.Planar) (domain.Geographic, error)

	// Name returns the projection name the transformer applies.
	Name() string
}
