package projection

import "math"

// Sinusoidal is the spherical sinusoidal (Sanson-Flamsteed) projection, an
// equal-area pseudocylindrical construction with closed-form equations in
// both directions.
type Sinusoidal struct {
	r    float64
	lon0 float64
	x0   float64
	y0   float64
}

// NewSinusoidal creates a sinusoidal projection from the parameter set.
func NewSinusoidal(p Params) (*Sinusoidal, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Sinusoidal{
		r:    p.Radius(),
		lon0: p.CentralMeridian,
		x0:   p.FalseEasting,
		y0:   p.FalseNorthing,
	}, nil
}

// Name returns the projection name.
func (s *Sinusoidal) Name() string { return "Sinusoidal" }

// Forward maps geographic coordinates (radians) to planar coordinates.
func (s *Sinusoidal) Forward(lon, lat float64) (x, y float64, err error) {
	if math.Abs(lat) > halfPi+epsLn {
		return 0, 0, &DomainError{Projection: s.Name(), X: lon, Y: lat, Reason: "latitude beyond pole"}
	}
	lam := adjustLon(lon - s.lon0)
	x = s.x0 + s.r*lam*math.Cos(lat)
	y = s.y0 + s.r*lat
	return x, y, nil
}

// Inverse maps planar coordinates back to geographic coordinates (radians).
func (s *Sinusoidal) Inverse(x, y float64) (lon, lat float64, err error) {
	lat = (y - s.y0) / s.r
	if math.Abs(lat) > halfPi+epsLn {
		return 0, 0, &DomainError{Projection: s.Name(), X: x, Y: y, Reason: "planar y beyond pole"}
	}
	if lat > halfPi {
		lat = halfPi
	} else if lat < -halfPi {
		lat = -halfPi
	}
	cosLat := math.Cos(lat)
	if cosLat < epsLn {
		// Meridians converge at the pole; longitude is indeterminate there.
		return s.lon0, lat, nil
	}
	lon = adjustLon(s.lon0 + (x-s.x0)/(s.r*cosLat))
	return lon, lat, nil
}

func init() {
	Register(func(p Params) (Projection, error) { return NewSinusoidal(p) },
		"Sinusoidal", "Sanson_Flamsteed", "sinu")
}
