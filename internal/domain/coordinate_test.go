package domain

import (
	"errors"
	"math"
	"testing"
)

func TestGeographicValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Geographic
		wantErr bool
	}{
		{"valid origin", Geographic{0, 0}, false},
		{"valid extremes", Geographic{-180, 90}, false},
		{"valid east edge", Geographic{180, -90}, false},
		{"longitude too small", Geographic{-180.1, 0}, true},
		{"longitude too large", Geographic{181, 0}, true},
		{"latitude too small", Geographic{0, -90.5}, true},
		{"latitude too large", Geographic{0, 91}, true},
		{"nan longitude", Geographic{math.NaN(), 0}, true},
		{"infinite latitude", Geographic{0, math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() error does not wrap ErrInvalidInput: %v", err)
			}
		})
	}
}

func TestGeographicRadians(t *testing.T) {
	g := NewGeographic(-100, 45)
	lon, lat := g.Radians()
	if math.Abs(lon+100*math.Pi/180) > 1e-15 {
		t.Errorf("Radians() lon = %g", lon)
	}
	if math.Abs(lat-45*math.Pi/180) > 1e-15 {
		t.Errorf("Radians() lat = %g", lat)
	}

	back := GeographicFromRadians(lon, lat)
	if math.Abs(back.Lon-g.Lon) > 1e-12 || math.Abs(back.Lat-g.Lat) > 1e-12 {
		t.Errorf("round trip through radians drifted to %v", back)
	}
}

func TestGeographicWKT(t *testing.T) {
	g := NewGeographic(13.405, 52.52)
	want := "POINT(13.405000 52.520000)"
	if got := g.WKT(); got != want {
		t.Errorf("WKT() = %q, want %q", got, want)
	}
}

func TestPlanarValidate(t *testing.T) {
	if err := NewPlanar(1000000, -2000000).Validate(); err != nil {
		t.Errorf("Validate() on finite coordinate: %v", err)
	}
	if err := (Planar{math.NaN(), 0}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Validate() on NaN: got %v, want ErrInvalidInput", err)
	}
}

func TestExtentExpand(t *testing.T) {
	var e Extent
	if !e.IsEmpty() {
		t.Error("zero-value extent not empty")
	}
	e.Expand(10, 20)
	e.Expand(-5, 40)
	e.Expand(15, -3)

	want := NewExtent(-5, -3, 15, 40)
	if e != want {
		t.Errorf("Expand() produced %+v, want %+v", e, want)
	}
	if e.IsEmpty() {
		t.Error("expanded extent reported empty")
	}
	if !e.IsValid() {
		t.Error("expanded extent reported invalid")
	}
	if e.Width() != 20 || e.Height() != 43 {
		t.Errorf("Width/Height = %g/%g", e.Width(), e.Height())
	}
}

// A first coordinate at the planar origin must seed the extent rather
// than be dropped when the next coordinate arrives.
func TestExtentExpandOriginFirst(t *testing.T) {
	var e Extent
	e.Expand(0, 0)
	if e.IsEmpty() {
		t.Fatal("extent empty after expanding to the origin")
	}
	e.Expand(5, 5)

	want := NewExtent(0, 0, 5, 5)
	if e != want {
		t.Errorf("Expand() produced %+v, want %+v", e, want)
	}
	if !e.Contains(Geographic{Lon: 0, Lat: 0}) {
		t.Error("origin no longer inside the extent")
	}
}

func TestExtentContains(t *testing.T) {
	e := Extent{MinX: -10, MinY: -10, MaxX: 10, MaxY: 10}
	if !e.Contains(Geographic{0, 0}) {
		t.Error("center not contained")
	}
	if !e.Contains(Geographic{10, -10}) {
		t.Error("corner not contained")
	}
	if e.Contains(Geographic{11, 0}) {
		t.Error("outside point contained")
	}
}
