package domain

import "time"

// Dataset represents a registered GeoPackage dataset whose point layers can
// be reprojected.
type Dataset struct {
	ID           string    // Unique identifier (derived from filename)
	Name         string    // Display name
	Path         string    // File path
	Size         int64     // File size in bytes
	Layers       []Layer   // Feature layers
	Description  string    // From gpkg_metadata, when present
	License      License   // License information
	LoadedAt     time.Time // Load timestamp
	LastAccessed time.Time // Last reprojection timestamp
}

// IsReady returns true if the dataset has at least one layer that can be
// reprojected.
func (d *Dataset) IsReady() bool {
	for _, layer := range d.Layers {
		if layer.IsPointLayer() {
			return true
		}
	}
	return false
}

// LayerCount returns the number of feature layers.
func (d *Dataset) LayerCount() int {
	return len(d.Layers)
}

// GetLayer returns a layer by name.
func (d *Dataset) GetLayer(name string) (*Layer, bool) {
	for i := range d.Layers {
		if d.Layers[i].Name == name {
			return &d.Layers[i], true
		}
	}
	return nil, false
}

// PointLayers returns the layers that carry point geometries.
func (d *Dataset) PointLayers() []Layer {
	var layers []Layer
	for _, layer := range d.Layers {
		if layer.IsPointLayer() {
			layers = append(layers, layer)
		}
	}
	return layers
}

// Layer represents a feature layer within a dataset.
type Layer struct {
	Name           string  // Layer name from gpkg_contents.table_name
	Description    string  // Layer description
	GeometryColumn string  // Name of the geometry column
	GeometryType   string  // Geometry type (POINT, POLYGON, etc.)
	SRID           int     // Spatial Reference ID
	FeatureCount   int64   // Number of features
	Extent         *Extent // Geographic bounding box (optional)
}

// IsPointLayer returns true if the layer contains point geometries.
func (l *Layer) IsPointLayer() bool {
	return l.GeometryType == "POINT" || l.GeometryType == "MULTIPOINT"
}

// IsGeographic returns true if the layer coordinates are geographic WGS 84.
func (l *Layer) IsGeographic() bool {
	return l.SRID == SRIDWGS84
}

// DatasetStatus represents the lifecycle state of a dataset.
type DatasetStatus string

const (
	StatusLoading   DatasetStatus = "loading"
	StatusReady     DatasetStatus = "ready"
	StatusError     DatasetStatus = "error"
	StatusUnloading DatasetStatus = "unloading"
)
