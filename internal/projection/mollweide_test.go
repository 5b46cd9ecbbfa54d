package projection

import (
	"errors"
	"math"
	"testing"
)

func TestMollweideForward(t *testing.T) {
	m, err := NewMollweide(testParams())
	if err != nil {
		t.Fatalf("NewMollweide: %v", err)
	}

	tests := []struct {
		name     string
		lon, lat float64
		x, y     float64
	}{
		{"origin", 0, 0, 0, 0},
		{"equator east edge", math.Pi, 0, testRadius * 2 * math.Sqrt2, 0},
		{"north pole", 0, halfPi, 0, testRadius * math.Sqrt2},
		{"south pole", 0, -halfPi, 0, -testRadius * math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, err := m.Forward(tt.lon, tt.lat)
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

func TestMollweideAuxiliaryAngle(t *testing.T) {
	m, err := NewMollweide(testParams())
	if err != nil {
		t.Fatalf("NewMollweide: %v", err)
	}

	// The defining equation must hold for the solved angle.
	for latDeg := -89.0; latDeg <= 89; latDeg += 11 {
		lat := deg(latDeg)
		theta, err := m.theta(lat)
		if err != nil {
			t.Fatalf("theta(%g): %v", latDeg, err)
		}
		residual := 2*theta + math.Sin(2*theta) - math.Pi*math.Sin(lat)
		if math.Abs(residual) > 1e-12 {
			t.Errorf("theta(%g) residual %g", latDeg, residual)
		}
	}

	// At the poles the Newton denominator vanishes; the shortcut must land
	// on exactly +-pi/2.
	for _, lat := range []float64{halfPi, -halfPi} {
		theta, err := m.theta(lat)
		if err != nil {
			t.Fatalf("theta at pole: %v", err)
		}
		if theta != sign(lat)*halfPi {
			t.Errorf("theta(%g) = %g, want %g", lat, theta, sign(lat)*halfPi)
		}
	}
}

func TestMollweideRoundTrip(t *testing.T) {
	m, err := NewMollweide(Params{
		SemiMajor:       testRadius,
		SemiMinor:       testRadius,
		CentralMeridian: deg(-30),
		FalseEasting:    100000,
	})
	if err != nil {
		t.Fatalf("NewMollweide: %v", err)
	}

	for lonDeg := -150.0; lonDeg <= 150; lonDeg += 30 {
		for latDeg := -89.0; latDeg <= 89; latDeg += 22.25 {
			lon, lat := deg(lonDeg), deg(latDeg)
			x, y, err := m.Forward(lon, lat)
			if err != nil {
				t.Fatalf("Forward(%g, %g): %v", lonDeg, latDeg, err)
			}
			lon2, lat2, err := m.Inverse(x, y)
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

func TestMollweideInversePole(t *testing.T) {
	m, err := NewMollweide(testParams())
	if err != nil {
		t.Fatalf("NewMollweide: %v", err)
	}

	lon, lat, err := m.Inverse(0, testRadius*math.Sqrt2)
	if err != nil {
		t.Fatalf("Inverse at pole: %v", err)
	}
	if lon != 0 {
		t.Errorf("pole longitude = %g, want central meridian", lon)
	}
	if math.Abs(lat-halfPi) > 1e-9 {
		t.Errorf("pole latitude = %g, want %g", lat, halfPi)
	}
}

func TestMollweideDomainErrors(t *testing.T) {
	m, err := NewMollweide(testParams())
	if err != nil {
		t.Fatalf("NewMollweide: %v", err)
	}

	if _, _, err := m.Forward(0, 1.6); !errors.Is(err, ErrDomain) {
		t.Errorf("Forward beyond pole: got %v, want ErrDomain", err)
	}
	if _, _, err := m.Inverse(0, 2*testRadius); !errors.Is(err, ErrDomain) {
		t.Errorf("Inverse beyond pole: got %v, want ErrDomain", err)
	}
}
