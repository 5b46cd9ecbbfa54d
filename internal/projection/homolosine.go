package projection

import "math"

// latThresh is the latitude at which the construction switches between the
// equatorial sinusoidal band and the polar Mollweide caps: 40°44'11.8",
// the latitude where the two equal-area forms have identical parallel
// spacing.
var latThresh = (40 + 44/60.0 + 11.8/3600.0) * math.Pi / 180

// Interruption tables of the Goode homolosine construction, in degrees.
// Each hemisphere lists its lobe boundaries (strictly increasing, covering
// the full longitude range) and one central meridian per lobe.
var (
	northBoundsDeg  = []float64{-180, -40, 180}
	northCentralDeg = []float64{-100, 30}
	southBoundsDeg  = []float64{-180, -100, -20, 80, 180}
	southCentralDeg = []float64{-160, -60, 20, 140}
)

// Trace observes the decision points of a composite transform. All methods
// are called synchronously from Forward/Inverse; implementations must not
// block. A nil Trace disables tracing.
type Trace interface {
	// Hemisphere reports which hemisphere's lobe table was chosen.
	Hemisphere(south bool)
	// Lobe reports the selected lobe and its central meridian (radians).
	Lobe(index int, centralMeridian float64)
	// Branch reports whether the Mollweide (true) or sinusoidal (false)
	// region handled the point.
	Branch(mollweide bool)
}

// lobeSet is one hemisphere's interruption layout: boundary meridians in
// radians, the matching planar x boundaries (the meridians mapped through
// the sinusoidal forward transform), and one central meridian per lobe.
type lobeSet struct {
	bounds       []float64
	planarBounds []float64
	central      []float64
}

func newLobeSet(name string, boundsDeg, centralDeg []float64, sinu *Sinusoidal) (*lobeSet, error) {
	if len(boundsDeg) != len(centralDeg)+1 {
		return nil, &ConfigurationError{Projection: name,
			Reason: "lobe table must have exactly one more boundary than central meridians"}
	}
	if len(centralDeg) == 0 {
		return nil, &ConfigurationError{Projection: name, Reason: "lobe table is empty"}
	}
	if boundsDeg[0] != -180 || boundsDeg[len(boundsDeg)-1] != 180 {
		return nil, &ConfigurationError{Projection: name,
			Reason: "lobe boundaries must cover the full -180..180 range"}
	}
	ls := &lobeSet{
		bounds:       make([]float64, len(boundsDeg)),
		planarBounds: make([]float64, len(boundsDeg)),
		central:      make([]float64, len(centralDeg)),
	}
	for i, b := range boundsDeg {
		if i > 0 && b <= boundsDeg[i-1] {
			return nil, &ConfigurationError{Projection: name,
				Reason: "lobe boundaries must be strictly increasing"}
		}
		ls.bounds[i] = b * math.Pi / 180
		// Boundary meridians mapped into planar x at the equator; used by
		// the inverse transform to classify points without a round trip
		// through latitude.
		x, _, err := sinu.Forward(ls.bounds[i], 0)
		if err != nil {
			return nil, err
		}
		ls.planarBounds[i] = x
	}
	for i, c := range centralDeg {
		if c <= boundsDeg[i] || c >= boundsDeg[i+1] {
			return nil, &ConfigurationError{Projection: name,
				Reason: "central meridian outside its lobe"}
		}
		ls.central[i] = c * math.Pi / 180
	}
	return ls, nil
}

// selectLobe returns the central meridian and index of the lobe holding
// coordinate, scanning for the first boundary strictly greater than it.
// The convention is closed-open: a coordinate exactly on an interior
// boundary belongs to the lobe starting at that boundary; the final
// boundary is inclusive so the +180° meridian resolves to the last lobe.
func (l *lobeSet) selectLobe(coord float64, planar bool) (central float64, index int, ok bool) {
	b := l.bounds
	if planar {
		b = l.planarBounds
	}
	last := b[len(b)-1]
	// Tolerate floating point drift just past the range edges.
	eps := epsLn * math.Max(1, math.Abs(last))
	if coord < b[0]-eps || coord > last+eps {
		return 0, 0, false
	}
	for i := 1; i < len(b); i++ {
		if coord < b[i] {
			return l.central[i-1], i - 1, true
		}
	}
	return l.central[len(l.central)-1], len(l.central) - 1, true
}

// Homolosine is the interrupted Goode homolosine projection: sinusoidal
// between the threshold latitudes, Mollweide toward the poles, assembled
// from independently centered longitude lobes with interruptions over the
// oceans.
//
// The zero value is not usable; construct instances with NewHomolosine.
// Trace may be assigned after construction but before first use.
type Homolosine struct {
	params Params
	sinu   *Sinusoidal
	moll   *Mollweide
	north  *lobeSet
	south  *lobeSet

	// mollOffset is the vertical discontinuity between the Mollweide and
	// sinusoidal forms at the threshold latitude, removed from Mollweide
	// output so the seam is continuous. yThresh is the planar y the
	// threshold latitude maps to; the inverse uses it to classify points.
	// Both depend on the configured radius and are derived at
	// construction, never cached across configurations.
	mollOffset float64
	yThresh    float64

	// Trace, when non-nil, receives transform decision points.
	Trace Trace
}

// NewHomolosine creates a Goode homolosine projection from the parameter
// set. The lobe tables are validated here; a malformed table is rejected
// before any transform is attempted.
func NewHomolosine(p Params) (*Homolosine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// Sub-projections live in the lobe-local frame: centered on meridian
	// zero with no false origin. The composite applies lobe placement and
	// the false origin itself.
	local := Params{SemiMajor: p.SemiMajor, SemiMinor: p.SemiMinor}
	sinu, err := NewSinusoidal(local)
	if err != nil {
		return nil, err
	}
	moll, err := NewMollweide(local)
	if err != nil {
		return nil, err
	}

	h := &Homolosine{params: p, sinu: sinu, moll: moll}

	h.north, err = newLobeSet(h.Name(), northBoundsDeg, northCentralDeg, sinu)
	if err != nil {
		return nil, err
	}
	h.south, err = newLobeSet(h.Name(), southBoundsDeg, southCentralDeg, sinu)
	if err != nil {
		return nil, err
	}

	_, ys, err := sinu.Forward(0, latThresh)
	if err != nil {
		return nil, err
	}
	_, ym, err := moll.Forward(0, latThresh)
	if err != nil {
		return nil, err
	}
	h.yThresh = ys
	h.mollOffset = ym - ys

	return h, nil
}

// Name returns the projection name.
func (h *Homolosine) Name() string { return "Goode_Homolosine" }

// verticalOffset is the seam correction for a hemisphere: positive in the
// north, negative in the south.
func (h *Homolosine) verticalOffset(south bool) float64 {
	if south {
		return -h.mollOffset
	}
	return h.mollOffset
}

// horizontalShift is the planar x a lobe's central meridian sits at in the
// assembled map, i.e. the translation from the lobe-local frame into the
// composite frame. It depends on the configured radius, so it is evaluated
// through the sinusoidal primitive rather than tabulated.
func (h *Homolosine) horizontalShift(centralMeridian float64) float64 {
	x, _, _ := h.sinu.Forward(centralMeridian, 0)
	return x
}

func (h *Homolosine) lobes(south bool) *lobeSet {
	if south {
		return h.south
	}
	return h.north
}

// Forward maps geographic coordinates (radians) to planar coordinates.
func (h *Homolosine) Forward(lon, lat float64) (x, y float64, err error) {
	if math.Abs(lat) > halfPi+epsLn {
		return 0, 0, &DomainError{Projection: h.Name(), X: lon, Y: lat, Reason: "latitude beyond pole"}
	}
	lam := adjustLon(lon - h.params.CentralMeridian)

	south := lat < 0
	if h.Trace != nil {
		h.Trace.Hemisphere(south)
	}

	central, index, ok := h.lobes(south).selectLobe(lam, false)
	if !ok {
		return 0, 0, &DomainError{Projection: h.Name(), X: lon, Y: lat,
			Reason: "longitude outside the interruption tables"}
	}
	if h.Trace != nil {
		h.Trace.Lobe(index, central)
	}
	lamLocal := lam - central

	mollweide := math.Abs(lat) > latThresh
	if h.Trace != nil {
		h.Trace.Branch(mollweide)
	}

	if mollweide {
		x, y, err = h.moll.Forward(lamLocal, lat)
		if err != nil {
			return 0, 0, err
		}
		y -= h.verticalOffset(south)
	} else {
		x, y, err = h.sinu.Forward(lamLocal, lat)
		if err != nil {
			return 0, 0, err
		}
	}

	x += h.horizontalShift(central)
	return x + h.params.FalseEasting, y + h.params.FalseNorthing, nil
}

// Inverse maps planar coordinates back to geographic coordinates (radians).
func (h *Homolosine) Inverse(x, y float64) (lon, lat float64, err error) {
	xr := x - h.params.FalseEasting
	yr := y - h.params.FalseNorthing

	south := yr < 0
	if h.Trace != nil {
		h.Trace.Hemisphere(south)
	}

	central, index, ok := h.lobes(south).selectLobe(xr, true)
	if !ok {
		return 0, 0, &DomainError{Projection: h.Name(), X: x, Y: y,
			Reason: "planar x outside the interruption tables"}
	}
	if h.Trace != nil {
		h.Trace.Lobe(index, central)
	}
	xLocal := xr - h.horizontalShift(central)

	// Classify by the precomputed planar threshold instead of inverting
	// first and re-checking the latitude.
	mollweide := math.Abs(yr) > h.yThresh
	if h.Trace != nil {
		h.Trace.Branch(mollweide)
	}

	var lonLocal float64
	if mollweide {
		yLocal := yr + h.verticalOffset(south)
		lonLocal, lat, err = h.moll.Inverse(xLocal, yLocal)
	} else {
		lonLocal, lat, err = h.sinu.Inverse(xLocal, yr)
	}
	if err != nil {
		return 0, 0, err
	}

	lon = adjustLon(lonLocal + central + h.params.CentralMeridian)
	return lon, lat, nil
}

func init() {
	Register(func(p Params) (Projection, error) { return NewHomolosine(p) },
		"Goode_Homolosine", "Interrupted_Goode_Homolosine", "Homolosine", "igh")
}
