package projection

import "math"

const (
	// mollMaxIter bounds the Newton solve for the auxiliary angle; the
	// solve converges in a handful of iterations everywhere except within
	// numerical noise of the poles, which the shortcut below handles.
	mollMaxIter = 50
	mollTol     = 1.0e-14
)

// Mollweide is the spherical Mollweide (homalographic) projection, an
// equal-area pseudocylindrical construction. Both directions depend on an
// auxiliary angle theta satisfying 2*theta + sin(2*theta) = pi*sin(lat),
// solved with Newton's method under a fixed iteration budget.
type Mollweide struct {
	r    float64
	lon0 float64
	x0   float64
	y0   float64
}

// NewMollweide creates a Mollweide projection from the parameter set.
func NewMollweide(p Params) (*Mollweide, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Mollweide{
		r:    p.Radius(),
		lon0: p.CentralMeridian,
		x0:   p.FalseEasting,
		y0:   p.FalseNorthing,
	}, nil
}

// Name returns the projection name.
func (m *Mollweide) Name() string { return "Mollweide" }

// theta solves the auxiliary angle for a latitude.
func (m *Mollweide) theta(lat float64) (float64, error) {
	target := math.Pi * math.Sin(lat)
	// At the poles the Newton denominator vanishes; the solution there is
	// exactly +-pi/2.
	if math.Abs(target) >= math.Pi-1.0e-9 {
		return sign(lat) * halfPi, nil
	}
	theta := lat
	for i := 0; i < mollMaxIter; i++ {
		d := -(2*theta + math.Sin(2*theta) - target) / (2 + 2*math.Cos(2*theta))
		theta += d
		if math.Abs(d) < mollTol {
			return theta, nil
		}
	}
	return math.NaN(), &ConvergenceError{Projection: m.Name(), Lat: lat, Iterations: mollMaxIter}
}

// Forward maps geographic coordinates (radians) to planar coordinates.
func (m *Mollweide) Forward(lon, lat float64) (x, y float64, err error) {
	if math.Abs(lat) > halfPi+epsLn {
		return 0, 0, &DomainError{Projection: m.Name(), X: lon, Y: lat, Reason: "latitude beyond pole"}
	}
	lam := adjustLon(lon - m.lon0)
	theta, err := m.theta(lat)
	if err != nil {
		return 0, 0, err
	}
	x = m.x0 + m.r*(2*math.Sqrt2/math.Pi)*lam*math.Cos(theta)
	y = m.y0 + m.r*math.Sqrt2*math.Sin(theta)
	return x, y, nil
}

// Inverse maps planar coordinates back to geographic coordinates (radians).
func (m *Mollweide) Inverse(x, y float64) (lon, lat float64, err error) {
	s := (y - m.y0) / (m.r * math.Sqrt2)
	if math.Abs(s) > 1+epsLn {
		return 0, 0, &DomainError{Projection: m.Name(), X: x, Y: y, Reason: "planar y beyond pole"}
	}
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	theta := math.Asin(s)
	arg := (2*theta + math.Sin(2*theta)) / math.Pi
	if arg > 1 {
		arg = 1
	} else if arg < -1 {
		arg = -1
	}
	lat = math.Asin(arg)
	cosTheta := math.Cos(theta)
	if cosTheta < epsLn {
		// Pole: the whole parallel degenerates to a point.
		return m.lon0, lat, nil
	}
	lon = adjustLon(m.lon0 + math.Pi*(x-m.x0)/(2*math.Sqrt2*m.r*cosTheta))
	return lon, lat, nil
}

func init() {
	Register(func(p Params) (Projection, error) { return NewMollweide(p) },
		"Mollweide", "Homalographic", "moll")
}
