package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jobrunner/goode/internal/application"
	"github.com/jobrunner/goode/internal/domain"
)

// GeographicInput represents a geographic coordinate in a request body.
type GeographicInput struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// PlanarInput represents a planar coordinate in a request body.
type PlanarInput struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TransformBody is the request body for forward and inverse transforms.
type TransformBody struct {
	Projection string            `json:"projection,omitempty"`
	Geographic []GeographicInput `json:"coordinates,omitempty"`
	Planar     []PlanarInput     `json:"points,omitempty"`
}

// ReprojectBody is the request body for dataset reprojection.
type ReprojectBody struct {
	DatasetID  string `json:"dataset_id"`
	Layer      string `json:"layer,omitempty"`
	Projection string `json:"projection,omitempty"`
}

// handleForward projects geographic coordinates to the plane.
func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	var body TransformBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req := domain.TransformRequest{
		Projection: body.Projection,
		Geographic: make([]domain.Geographic, len(body.Geographic)),
	}
	for i, c := range body.Geographic {
		req.Geographic[i] = domain.Geographic{Lon: c.Lon, Lat: c.Lat}
	}

	result, err := s.transforms.Forward(r.Context(), req)
	if err != nil {
		s.handleTransformError(w, err)
		return
	}

	results := make([]map[string]interface{}, len(result.Planar))
	for i, p := range result.Planar {
		results[i] = map[string]interface{}{"x": p.X, "y": p.Y}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"projection":         result.Projection,
		"results":            results,
		"count":              result.Count(),
		"processing_time_ms": result.ProcessingTime.Milliseconds(),
	})
}

// handleInverse projects planar coordinates back to geographic coordinates.
func (s *Server) handleInverse(w http.ResponseWriter, r *http.Request) {
	var body TransformBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req := domain.TransformRequest{
		Projection: body.Projection,
		Planar:     make([]domain.Planar, len(body.Planar)),
	}
	for i, p := range body.Planar {
		req.Planar[i] = domain.Planar{X: p.X, Y: p.Y}
	}

	result, err := s.transforms.Inverse(r.Context(), req)
	if err != nil {
		s.handleTransformError(w, err)
		return
	}

	results := make([]map[string]interface{}, len(result.Geographic))
	for i, g := range result.Geographic {
		results[i] = map[string]interface{}{"lon": g.Lon, "lat": g.Lat}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"projection":         result.Projection,
		"results":            results,
		"count":              result.Count(),
		"processing_time_ms": result.ProcessingTime.Milliseconds(),
	})
}

// handleListProjections returns the available projections.
func (s *Server) handleListProjections(w http.ResponseWriter, r *http.Request) {
	infos, err := s.transforms.Projections(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to list projections")
		return
	}

	projections := make([]map[string]interface{}, len(infos))
	for i, info := range infos {
		projections[i] = map[string]interface{}{
			"name":    info.Name,
			"aliases": info.Aliases,
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"projections": projections,
		"default":     s.transforms.DefaultProjection(),
		"count":       len(projections),
	})
}

// handleReproject reprojects the point layers of a registered dataset.
func (s *Server) handleReproject(w http.ResponseWriter, r *http.Request) {
	var body ReprojectBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.DatasetID == "" {
		s.writeError(w, http.StatusBadRequest, "dataset_id is required")
		return
	}

	req := domain.ReprojectRequest{
		DatasetID:  body.DatasetID,
		Layer:      body.Layer,
		Projection: body.Projection,
	}

	response, err := s.reproject.Reproject(r.Context(), req)
	if err != nil {
		s.handleReprojectError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.formatReprojectResponse(response))
}

// handleHealth returns detailed health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	details := s.health.GetHealthDetails(r.Context())

	status := http.StatusOK
	if !details.Healthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":          boolToStatus(details.Healthy),
		"ready":           details.Ready,
		"datasets_loaded": details.DatasetsLoaded,
		"datasets_ready":  details.DatasetsReady,
		"projections":     details.Projections,
		"components":      details.Components,
	})
}

// handleLiveness returns liveness status.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsHealthy(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

// handleReadiness returns readiness status.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsReady(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}

// handleListDatasets returns all registered datasets.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := s.registry.ListDatasets(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to list datasets")
		return
	}

	response := make([]map[string]interface{}, len(datasets))
	for i := range datasets {
		response[i] = s.formatDataset(&datasets[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"datasets": response,
		"count":    len(datasets),
	})
}

// handleGetDataset returns a specific dataset.
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	datasetID := vars["datasetId"]

	ds, err := s.registry.GetDataset(r.Context(), datasetID)
	if err != nil {
		if errors.Is(err, domain.ErrDatasetNotFound) {
			s.writeError(w, http.StatusNotFound, "Dataset not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to get dataset")
		return
	}

	s.writeJSON(w, http.StatusOK, s.formatDataset(ds))
}

// handleGetLayers returns layers for a specific dataset.
func (s *Server) handleGetLayers(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	datasetID := vars["datasetId"]

	ds, err := s.registry.GetDataset(r.Context(), datasetID)
	if err != nil {
		if errors.Is(err, domain.ErrDatasetNotFound) {
			s.writeError(w, http.StatusNotFound, "Dataset not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to get dataset")
		return
	}

	layers := make([]map[string]interface{}, len(ds.Layers))
	for i, l := range ds.Layers {
		layers[i] = map[string]interface{}{
			"name":            l.Name,
			"description":     l.Description,
			"geometry_type":   l.GeometryType,
			"geometry_column": l.GeometryColumn,
			"srid":            l.SRID,
			"feature_count":   l.FeatureCount,
			"is_point":        l.IsPointLayer(),
		}
		if l.Extent != nil {
			layers[i]["extent"] = map[string]interface{}{
				"min_x": l.Extent.MinX,
				"min_y": l.Extent.MinY,
				"max_x": l.Extent.MaxX,
				"max_y": l.Extent.MaxY,
			}
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"dataset_id": datasetID,
		"layers":     layers,
		"count":      len(layers),
	})
}

// handleOpenAPI returns the OpenAPI specification.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	spec, err := getOpenAPIJSON()
	if err != nil {
		s.logger.Error("failed to get OpenAPI spec", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load OpenAPI specification")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(spec)
}

// handleSync handles the sync trigger endpoint.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncService == nil {
		s.writeError(w, http.StatusNotFound, "Sync service not available")
		return
	}

	result, err := s.syncService.TriggerSync(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrRateLimited) {
			w.Header().Set("Retry-After", "30")
			s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Try again in 30 seconds.")
			return
		}
		s.logger.Error("sync failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Sync failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// formatReprojectResponse formats the reprojection response for JSON output.
func (s *Server) formatReprojectResponse(resp *domain.ReprojectResponse) map[string]interface{} {
	results := make([]map[string]interface{}, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		features := make([]map[string]interface{}, len(r.Features))
		for j := range r.Features {
			f := &r.Features[j]
			features[j] = map[string]interface{}{
				"id": f.Feature.ID,
				"x":  f.Location.X,
				"y":  f.Location.Y,
			}
			// Only include attributes if explicitly enabled via --with-properties
			if s.withProperties && len(f.Feature.Properties) > 0 {
				features[j]["properties"] = f.Feature.Properties
			}
		}

		results[i] = map[string]interface{}{
			"dataset_id":    r.DatasetID,
			"dataset_name":  r.DatasetName,
			"layer":         r.Layer,
			"projection":    r.Projection,
			"features":      features,
			"feature_count": r.FeatureCount(),
			"skipped":       r.Skipped,
			"layer_time_ms": r.ProcessingTime.Milliseconds(),
		}

		if !r.Extent.IsEmpty() {
			results[i]["extent"] = map[string]interface{}{
				"min_x": r.Extent.MinX,
				"min_y": r.Extent.MinY,
				"max_x": r.Extent.MaxX,
				"max_y": r.Extent.MaxY,
			}
		}

		if !r.License.IsEmpty() {
			results[i]["license"] = map[string]interface{}{
				"name":        r.License.Name,
				"url":         r.License.URL,
				"attribution": r.License.Attribution,
			}
		}
	}

	return map[string]interface{}{
		"results":            results,
		"total_features":     resp.TotalFeatures,
		"total_skipped":      resp.TotalSkipped,
		"processing_time_ms": resp.ProcessingTime.Milliseconds(),
	}
}

// formatDataset formats a dataset for JSON output.
func (s *Server) formatDataset(ds *domain.Dataset) map[string]interface{} {
	out := map[string]interface{}{
		"id":            ds.ID,
		"name":          ds.Name,
		"path":          ds.Path,
		"size":          ds.Size,
		"layer_count":   ds.LayerCount(),
		"ready":         ds.IsReady(),
		"loaded_at":     ds.LoadedAt,
		"last_accessed": ds.LastAccessed,
	}
	if ds.Description != "" {
		out["description"] = ds.Description
	}
	return out
}

// handleTransformError maps transform errors to HTTP status codes.
func (s *Server) handleTransformError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUnknownProjection) {
		s.writeError(w, http.StatusBadRequest, "Unknown projection")
		return
	}

	// Per-coordinate failures are wrapped in a TransformError; check them
	// before the bare validation errors of the request envelope.
	var transformErr *domain.TransformError
	if errors.As(err, &transformErr) {
		s.writeError(w, http.StatusUnprocessableEntity, transformErr.Error())
		return
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		s.writeError(w, http.StatusBadRequest, validationErr.Message)
		return
	}

	s.logger.Error("transform error", "error", err)
	s.writeError(w, http.StatusInternalServerError, "Transform failed")
}

// handleReprojectError maps reprojection errors to HTTP status codes.
func (s *Server) handleReprojectError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrDatasetNotFound) {
		s.writeError(w, http.StatusNotFound, "Dataset not found")
		return
	}

	if errors.Is(err, domain.ErrLayerNotFound) {
		s.writeError(w, http.StatusNotFound, "Layer not found")
		return
	}

	if errors.Is(err, domain.ErrUnknownProjection) {
		s.writeError(w, http.StatusBadRequest, "Unknown projection")
		return
	}

	if errors.Is(err, domain.ErrUnsupportedLayer) {
		s.writeError(w, http.StatusUnprocessableEntity, "Layer has no point geometry")
		return
	}

	if errors.Is(err, domain.ErrNotReady) {
		s.writeError(w, http.StatusConflict, "Dataset is not ready")
		return
	}

	s.logger.Error("reproject error", "error", err)
	s.writeError(w, http.StatusInternalServerError, "Reprojection failed")
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func boolToStatus(b bool) string {
	if b {
		return "ok"
	}
	return "unhealthy"
}
