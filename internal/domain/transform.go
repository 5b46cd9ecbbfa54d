package domain

import "time"

// TransformRequest represents a batch forward or inverse transform request.
type TransformRequest struct {
	Projection string       // Projection name (empty = service default)
	Geographic []Geographic // Input for forward transforms
	Planar     []Planar     // Input for inverse transforms
}

// TransformResult represents the result of a batch transform.
type TransformResult struct {
	Projection     string        // Projection that was applied
	Geographic     []Geographic  // Output of inverse transforms
	Planar         []Planar      // Output of forward transforms
	ProcessingTime time.Duration // Total processing time
}

// Count returns the number of transformed coordinates.
func (r *TransformResult) Count() int {
	if len(r.Planar) > 0 {
		return len(r.Planar)
	}
	return len(r.Geographic)
}

// ReprojectRequest represents a dataset reprojection request.
type ReprojectRequest struct {
	DatasetID  string // Dataset identifier
	Layer      string // Layer name (empty = all point layers)
	Projection string // Projection name (empty = service default)
}

// ReprojectResult represents the outcome of reprojecting one layer.
type ReprojectResult struct {
	DatasetID      string             // Dataset identifier
	DatasetName    string             // Dataset display name
	Layer          string             // Layer name
	Projection     string             // Projection that was applied
	Features       []ProjectedFeature // Reprojected features
	Skipped        int                // Features rejected by the transform
	Extent         Extent             // Planar extent of the output
	License        License            // License information
	ProcessingTime time.Duration      // Per-layer processing time
}

// FeatureCount returns the number of reprojected features.
func (r *ReprojectResult) FeatureCount() int {
	return len(r.Features)
}

// ReprojectResponse represents the full reprojection response.
type ReprojectResponse struct {
	Results        []ReprojectResult // Results per layer
	TotalFeatures  int               // Total reprojected feature count
	TotalSkipped   int               // Total rejected feature count
	ProcessingTime time.Duration     // Total processing time
}

// AddResult adds a layer result to the response.
func (r *ReprojectResponse) AddResult(result ReprojectResult) {
	r.Results = append(r.Results, result)
	r.TotalFeatures += result.FeatureCount()
	r.TotalSkipped += result.Skipped
}
