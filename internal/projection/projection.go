// Package projection implements pseudocylindrical map projections on the
// sphere: Sinusoidal, Mollweide, and the composite Goode Homolosine that
// stitches the two together across interrupted longitude lobes.
//
// All projections work in radians on the geographic side and meters on the
// planar side. Instances are configured once at construction and are safe
// for concurrent use afterwards.
package projection

import "math"

const (
	halfPi = math.Pi / 2
	twoPi  = 2 * math.Pi
	// sPi is slightly greater than pi, so values that exceed the principal
	// -180..180 range by floating point drift don't get wrapped to the
	// opposite side of the map.
	sPi   = 3.14159265359
	epsLn = 1.0e-10
)

// Params holds the parameter set recognized by all projections in this
// package: ellipsoid semi-axes, central meridian, and false origin offsets.
type Params struct {
	SemiMajor       float64 // semi-major axis in meters
	SemiMinor       float64 // semi-minor axis in meters
	CentralMeridian float64 // radians
	FalseEasting    float64 // meters
	FalseNorthing   float64 // meters
}

// Radius returns the radius of the sphere the spherical forms operate on.
// The spherical forms use the semi-major axis directly; the semi-minor axis
// is accepted for parameter-set compatibility and validated only.
func (p Params) Radius() float64 {
	return p.SemiMajor
}

// Validate checks the parameter set at construction time.
func (p Params) Validate() error {
	if p.SemiMajor <= 0 {
		return &ConfigurationError{Reason: "semi-major axis must be positive"}
	}
	if p.SemiMinor <= 0 || p.SemiMinor > p.SemiMajor {
		return &ConfigurationError{Reason: "semi-minor axis must be positive and not exceed the semi-major axis"}
	}
	if math.Abs(p.CentralMeridian) > sPi {
		return &ConfigurationError{Reason: "central meridian outside -pi..pi"}
	}
	return nil
}

// Projection is a forward/inverse transform pair between geographic
// coordinates (longitude, latitude in radians) and planar coordinates
// (x, y in meters).
type Projection interface {
	Name() string
	Forward(lon, lat float64) (x, y float64, err error)
	Inverse(x, y float64) (lon, lat float64, err error)
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// adjustLon wraps a longitude into the principal -pi..pi range.
func adjustLon(x float64) float64 {
	if math.Abs(x) <= sPi {
		return x
	}
	return x - sign(x)*twoPi
}
