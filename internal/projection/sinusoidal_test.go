package projection

import (
	"errors"
	"math"
	"testing"
)

const testRadius = 6370997.0

func testParams() Params {
	return Params{SemiMajor: testRadius, SemiMinor: testRadius}
}

func deg(d float64) float64 { return d * math.Pi / 180 }

func TestSinusoidalForward(t *testing.T) {
	s, err := NewSinusoidal(testParams())
	if err != nil {
		t.Fatalf("NewSinusoidal: %v", err)
	}

	tests := []struct {
		name     string
		lon, lat float64
		x, y     float64
	}{
		{"origin", 0, 0, 0, 0},
		{"equator east", deg(90), 0, testRadius * halfPi, 0},
		{"prime meridian north", 0, deg(45), 0, testRadius * deg(45)},
		{"north pole", 0, halfPi, 0, testRadius * halfPi},
		{"mid latitude", deg(60), deg(60), testRadius * deg(60) * 0.5, testRadius * deg(60)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, err := s.Forward(tt.lon, tt.lat)
			if err != nil {
				t.Fatalf("Forward(%g, %g): %v", tt.lon, tt.lat, err)
			}
			if math.Abs(x-tt.x) > 1e-6 || math.Abs(y-tt.y) > 1e-6 {
				t.Errorf("Forward(%g, %g) = (%g, %g), want (%g, %g)",
					tt.lon, tt.lat, x, y, tt.x, tt.y)
			}
		})
	}
}

func TestSinusoidalRoundTrip(t *testing.T) {
	s, err := NewSinusoidal(Params{
		SemiMajor:       testRadius,
		SemiMinor:       testRadius,
		CentralMeridian: deg(10),
		FalseEasting:    500000,
		FalseNorthing:   -200000,
	})
	if err != nil {
		t.Fatalf("NewSinusoidal: %v", err)
	}

	for lonDeg := -170.0; lonDeg <= 170; lonDeg += 35 {
		for latDeg := -85.0; latDeg <= 85; latDeg += 17 {
			lon, lat := deg(lonDeg), deg(latDeg)
			x, y, err := s.Forward(lon, lat)
			if err != nil {
				t.Fatalf("Forward(%g, %g): %v", lonDeg, latDeg, err)
			}
			lon2, lat2, err := s.Inverse(x, y)
			if err != nil {
				t.Fatalf("Inverse(%g, %g): %v", x, y, err)
			}
			if math.Abs(adjustLon(lon2-lon)) > 1e-9 || math.Abs(lat2-lat) > 1e-9 {
				t.Errorf("round trip (%g, %g) came back as (%g, %g)",
					lonDeg, latDeg, lon2/math.Pi*180, lat2/math.Pi*180)
			}
		}
	}
}

func TestSinusoidalInversePole(t *testing.T) {
	s, err := NewSinusoidal(testParams())
	if err != nil {
		t.Fatalf("NewSinusoidal: %v", err)
	}

	lon, lat, err := s.Inverse(0, testRadius*halfPi)
	if err != nil {
		t.Fatalf("Inverse at pole: %v", err)
	}
	if lon != 0 {
		t.Errorf("pole longitude = %g, want central meridian", lon)
	}
	if math.Abs(lat-halfPi) > 1e-12 {
		t.Errorf("pole latitude = %g, want %g", lat, halfPi)
	}
}

func TestSinusoidalDomainErrors(t *testing.T) {
	s, err := NewSinusoidal(testParams())
	if err != nil {
		t.Fatalf("NewSinusoidal: %v", err)
	}

	if _, _, err := s.Forward(0, 2.0); !errors.Is(err, ErrDomain) {
		t.Errorf("Forward beyond pole: got %v, want ErrDomain", err)
	}
	if _, _, err := s.Inverse(0, 3*testRadius); !errors.Is(err, ErrDomain) {
		t.Errorf("Inverse beyond pole: got %v, want ErrDomain", err)
	}

	var de *DomainError
	_, _, err = s.Forward(0, 2.0)
	if !errors.As(err, &de) {
		t.Fatalf("expected *DomainError, got %T", err)
	}
	if de.Projection != "Sinusoidal" {
		t.Errorf("DomainError.Projection = %q", de.Projection)
	}
}

func TestSinusoidalConfiguration(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"zero semi-major", Params{SemiMinor: testRadius}},
		{"negative semi-major", Params{SemiMajor: -1, SemiMinor: 1}},
		{"zero semi-minor", Params{SemiMajor: testRadius}},
		{"minor exceeds major", Params{SemiMajor: 1, SemiMinor: 2}},
		{"meridian out of range", Params{SemiMajor: testRadius, SemiMinor: testRadius, CentralMeridian: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSinusoidal(tt.p); !errors.Is(err, ErrConfiguration) {
				t.Errorf("NewSinusoidal(%+v): got %v, want ErrConfiguration", tt.p, err)
			}
		})
	}
}
