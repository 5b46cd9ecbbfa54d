package domain

// Feature represents a point feature read from a dataset layer.
type Feature struct {
	ID         int64                  // Feature ID (fid)
	LayerName  string                 // Associated layer name
	Location   Geographic             // Point location in WGS 84
	Properties map[string]interface{} // Attribute data
}

// GetProperty returns a property value by key.
func (f *Feature) GetProperty(key string) (interface{}, bool) {
	if f.Properties == nil {
		return nil, false
	}
	v, ok := f.Properties[key]
	return v, ok
}

// GetStringProperty returns a property as string.
func (f *Feature) GetStringProperty(key string) string {
	if v, ok := f.GetProperty(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetFloatProperty returns a property as float64.
func (f *Feature) GetFloatProperty(key string) float64 {
	if v, ok := f.GetProperty(key); ok {
		switch i := v.(type) {
		case float64:
			return i
		case float32:
			return float64(i)
		case int:
			return float64(i)
		case int64:
			return float64(i)
		}
	}
	return 0
}

// ProjectedFeature is a feature together with its planar image.
type ProjectedFeature struct {
	Feature  Feature // Source feature
	Location Planar  // Projected location in meters
}
