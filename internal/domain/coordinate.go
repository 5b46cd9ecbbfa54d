// Package domain contains the core business entities and value objects.
package domain

import (
	"fmt"
	"math"
)

// Geographic represents a geographic coordinate in degrees on WGS 84.
type Geographic struct {
	Lon float64 // Longitude in degrees, east positive
	Lat float64 // Latitude in degrees, north positive
}

// NewGeographic creates a geographic coordinate.
func NewGeographic(lon, lat float64) Geographic {
	return Geographic{Lon: lon, Lat: lat}
}

// Validate checks if the coordinate is within the geographic range.
func (g Geographic) Validate() error {
	if math.IsNaN(g.Lon) || math.IsNaN(g.Lat) || math.IsInf(g.Lon, 0) || math.IsInf(g.Lat, 0) {
		return &ValidationError{
			Field:      "coordinate",
			Value:      g,
			Constraint: "finite",
			Message:    "coordinate components must be finite numbers",
		}
	}
	if g.Lon < -180 || g.Lon > 180 {
		return &ValidationError{
			Field:      "longitude",
			Value:      g.Lon,
			Constraint: "[-180, 180]",
			Message:    "longitude must be between -180 and 180",
		}
	}
	if g.Lat < -90 || g.Lat > 90 {
		return &ValidationError{
			Field:      "latitude",
			Value:      g.Lat,
			Constraint: "[-90, 90]",
			Message:    "latitude must be between -90 and 90",
		}
	}
	return nil
}

// Radians returns the coordinate pair in radians.
func (g Geographic) Radians() (lon, lat float64) {
	return g.Lon * math.Pi / 180, g.Lat * math.Pi / 180
}

// String returns a string representation of the coordinate.
func (g Geographic) String() string {
	return fmt.Sprintf("POINT(%f %f) SRID=%d", g.Lon, g.Lat, SRIDWGS84)
}

// WKT returns the Well-Known Text representation.
func (g Geographic) WKT() string {
	return fmt.Sprintf("POINT(%f %f)", g.Lon, g.Lat)
}

// GeographicFromRadians creates a geographic coordinate from radians.
func GeographicFromRadians(lon, lat float64) Geographic {
	return Geographic{Lon: lon * 180 / math.Pi, Lat: lat * 180 / math.Pi}
}

// Planar represents a projected coordinate in meters.
type Planar struct {
	X float64 // Easting in meters
	Y float64 // Northing in meters
}

// NewPlanar creates a planar coordinate.
func NewPlanar(x, y float64) Planar {
	return Planar{X: x, Y: y}
}

// Validate checks that the coordinate components are finite.
func (p Planar) Validate() error {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return &ValidationError{
			Field:      "coordinate",
			Value:      p,
			Constraint: "finite",
			Message:    "coordinate components must be finite numbers",
		}
	}
	return nil
}

// String returns a string representation of the coordinate.
func (p Planar) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.X, p.Y)
}

// ProjectionInfo describes a projection available to clients.
type ProjectionInfo struct {
	Name    string   // Canonical registry name
	Aliases []string // Alternative registry names
}

// Common SRID constants.
const (
	SRIDWGS84      = 4326  // WGS 84 geographic
	SRIDHomolosine = 54052 // World Goode Homolosine (land), ESRI
	SRIDSinusoidal = 54008 // World Sinusoidal, ESRI
	SRIDMollweide  = 54009 // World Mollweide, ESRI
)

// Extent represents a spatial bounding box. The zero value is empty;
// the first Expand call seeds the bounds.
type Extent struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64

	seeded bool
}

// NewExtent creates an extent with the given bounds.
func NewExtent(minX, minY, maxX, maxY float64) Extent {
	return Extent{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY, seeded: true}
}

// Contains checks if a geographic coordinate is within the extent.
func (e Extent) Contains(g Geographic) bool {
	return g.Lon >= e.MinX && g.Lon <= e.MaxX && g.Lat >= e.MinY && g.Lat <= e.MaxY
}

// IsValid checks if the extent has valid dimensions.
func (e Extent) IsValid() bool {
	return e.MinX <= e.MaxX && e.MinY <= e.MaxY
}

// IsEmpty reports whether the extent covers no coordinates yet.
func (e Extent) IsEmpty() bool {
	return !e.seeded
}

// Width returns the width of the extent.
func (e Extent) Width() float64 {
	return math.Abs(e.MaxX - e.MinX)
}

// Height returns the height of the extent.
func (e Extent) Height() float64 {
	return math.Abs(e.MaxY - e.MinY)
}

// Expand grows the extent to include the coordinate. The first
// coordinate seeds an empty extent, so (0,0) is a point like any other.
func (e *Extent) Expand(x, y float64) {
	if !e.seeded {
		e.MinX, e.MaxX, e.MinY, e.MaxY = x, x, y, y
		e.seeded = true
		return
	}
	e.MinX = math.Min(e.MinX, x)
	e.MaxX = math.Max(e.MaxX, x)
	e.MinY = math.Min(e.MinY, y)
	e.MaxY = math.Max(e.MaxY, y)
}
