package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jobrunner/goode/internal/application"
	"github.com/jobrunner/goode/internal/config"
	"github.com/jobrunner/goode/internal/domain"
	"github.com/jobrunner/goode/internal/ports/output"
	"github.com/jobrunner/goode/internal/projection"
)

// mockRepository implements output.DatasetRepository for testing.
type mockRepository struct {
	features []domain.Feature
}

func (m *mockRepository) Open(_ context.Context, path string) (*domain.Dataset, error) {
	return &domain.Dataset{
		ID:   strings.TrimSuffix(path, ".gpkg"),
		Name: path,
		Path: path,
		Layers: []domain.Layer{
			{
				Name:           "cities",
				GeometryColumn: "geom",
				GeometryType:   "POINT",
				SRID:           domain.SRIDWGS84,
				FeatureCount:   int64(len(m.features)),
			},
		},
	}, nil
}

func (m *mockRepository) Close(_ context.Context, _ string) error {
	return nil
}

func (m *mockRepository) GetLayers(_ context.Context, _ string) ([]domain.Layer, error) {
	return nil, nil
}

func (m *mockRepository) ReadPoints(_ context.Context, _, _ string, fn func(domain.Feature) error) error {
	for _, f := range m.features {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// mockStorage implements output.ObjectStorage for testing.
type mockStorage struct{}

func (m *mockStorage) List(_ context.Context) ([]output.StorageObject, error) {
	return nil, nil
}

func (m *mockStorage) Download(_ context.Context, _, _ string) error {
	return nil
}

func (m *mockStorage) GetReader(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, nil
}

func (m *mockStorage) Exists(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func newTestServer(t *testing.T, repo *mockRepository) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	if repo == nil {
		repo = &mockRepository{}
	}

	registry := application.NewDatasetRegistry(
		repo,
		&mockStorage{},
		&output.NoOpMetrics{},
		logger,
		t.TempDir(),
	)

	transforms := application.NewTransformService(
		&output.NoOpMetrics{},
		logger,
		application.TransformServiceConfig{
			Params: projection.Params{SemiMajor: 6370997, SemiMinor: 6370997},
		},
	)

	reproject := application.NewReprojectService(registry, repo, transforms, &output.NoOpMetrics{}, logger)
	health := application.NewHealthService(registry, transforms)

	return NewServer(
		config.ServerConfig{
			Host:         "localhost",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		transforms,
		reproject,
		registry,
		health,
		nil, // No sync service for tests
		logger,
		false,
	)
}

func doJSON(t *testing.T, srv *Server, method, url, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	rr := httptest.NewRecorder()

	srv.router.ServeHTTP(rr, req)

	var resp map[string]interface{}
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return rr, resp
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	rr, resp := doJSON(t, srv, http.MethodGet, "/health", "")

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want %q", resp["status"], "ok")
	}
}

func TestHandleLiveness(t *testing.T) {
	srv := newTestServer(t, nil)

	rr, resp := doJSON(t, srv, http.MethodGet, "/health/live", "")

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want %q", resp["status"], "ok")
	}
}

func TestHandleReadiness(t *testing.T) {
	srv := newTestServer(t, nil)

	rr, _ := doJSON(t, srv, http.MethodGet, "/health/ready", "")

	// Empty registry is ready
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestHandleForward(t *testing.T) {
	srv := newTestServer(t, nil)

	body := `{"coordinates": [{"lon": 0, "lat": 0}, {"lon": 90, "lat": 0}]}`
	rr, resp := doJSON(t, srv, http.MethodPost, "/api/v1/transform/forward", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp["projection"] != "Goode_Homolosine" {
		t.Errorf("projection = %v, want %q", resp["projection"], "Goode_Homolosine")
	}
	if resp["count"] != float64(2) {
		t.Errorf("count = %v, want 2", resp["count"])
	}

	results := resp["results"].([]interface{})
	origin := results[0].(map[string]interface{})
	if math.Abs(origin["x"].(float64)) > 1e-6 || math.Abs(origin["y"].(float64)) > 1e-6 {
		t.Errorf("origin projects to (%v, %v), want (0, 0)", origin["x"], origin["y"])
	}

	// x = R * lon on the equator
	quarter := results[1].(map[string]interface{})
	wantX := 6370997 * math.Pi / 2
	if math.Abs(quarter["x"].(float64)-wantX) > 1e-3 {
		t.Errorf("x = %v, want %v", quarter["x"], wantX)
	}
}

func TestHandleForwardInverseRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil)

	body := `{"coordinates": [{"lon": 13.405, "lat": 52.52}]}`
	rr, resp := doJSON(t, srv, http.MethodPost, "/api/v1/transform/forward", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("forward status = %d: %s", rr.Code, rr.Body.String())
	}

	point := resp["results"].([]interface{})[0].(map[string]interface{})
	inverseBody, _ := json.Marshal(map[string]interface{}{
		"points": []map[string]interface{}{{"x": point["x"], "y": point["y"]}},
	})

	rr, resp = doJSON(t, srv, http.MethodPost, "/api/v1/transform/inverse", string(inverseBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("inverse status = %d: %s", rr.Code, rr.Body.String())
	}

	got := resp["results"].([]interface{})[0].(map[string]interface{})
	if math.Abs(got["lon"].(float64)-13.405) > 1e-7 {
		t.Errorf("lon = %v, want 13.405", got["lon"])
	}
	if math.Abs(got["lat"].(float64)-52.52) > 1e-7 {
		t.Errorf("lat = %v, want 52.52", got["lat"])
	}
}

func TestHandleForwardErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "invalid JSON",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty batch",
			body:       `{"coordinates": []}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown projection",
			body:       `{"projection": "Winkel_Tripel", "coordinates": [{"lon": 0, "lat": 0}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "latitude out of range",
			body:       `{"coordinates": [{"lon": 0, "lat": 95}]}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, _ := doJSON(t, srv, http.MethodPost, "/api/v1/transform/forward", tt.body)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestHandleInverseOutOfRange(t *testing.T) {
	srv := newTestServer(t, nil)

	body := `{"points": [{"x": 1e9, "y": 0}]}`
	rr, _ := doJSON(t, srv, http.MethodPost, "/api/v1/transform/inverse", body)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
}

func TestHandleListProjections(t *testing.T) {
	srv := newTestServer(t, nil)

	rr, resp := doJSON(t, srv, http.MethodGet, "/api/v1/projections", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if resp["default"] != "Goode_Homolosine" {
		t.Errorf("default = %v, want %q", resp["default"], "Goode_Homolosine")
	}
	if resp["count"] != float64(3) {
		t.Errorf("count = %v, want 3", resp["count"])
	}
}

func TestHandleListDatasets(t *testing.T) {
	srv := newTestServer(t, nil)

	rr, resp := doJSON(t, srv, http.MethodGet, "/api/v1/datasets", "")

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if resp["count"] != float64(0) {
		t.Errorf("count = %v, want 0", resp["count"])
	}
}

func TestHandleGetDatasetNotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	rr, _ := doJSON(t, srv, http.MethodGet, "/api/v1/datasets/nonexistent", "")

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestHandleGetLayersNotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	rr, _ := doJSON(t, srv, http.MethodGet, "/api/v1/datasets/nonexistent/layers", "")

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestHandleReproject(t *testing.T) {
	repo := &mockRepository{
		features: []domain.Feature{
			{ID: 1, LayerName: "cities", Location: domain.Geographic{Lon: 13.405, Lat: 52.52}},
			{ID: 2, LayerName: "cities", Location: domain.Geographic{Lon: -74.006, Lat: 40.713}},
		},
	}
	srv := newTestServer(t, repo)

	if err := srv.registry.LoadDataset(context.Background(), "cities.gpkg"); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	body := `{"dataset_id": "cities", "layer": "cities"}`
	rr, resp := doJSON(t, srv, http.MethodPost, "/api/v1/reproject", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp["total_features"] != float64(2) {
		t.Errorf("total_features = %v, want 2", resp["total_features"])
	}

	results := resp["results"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	layer := results[0].(map[string]interface{})
	if layer["projection"] != "Goode_Homolosine" {
		t.Errorf("projection = %v, want %q", layer["projection"], "Goode_Homolosine")
	}
	if len(layer["features"].([]interface{})) != 2 {
		t.Errorf("feature count = %d, want 2", len(layer["features"].([]interface{})))
	}
}

func TestHandleReprojectErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "invalid JSON",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing dataset_id",
			body:       `{"layer": "cities"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "dataset not found",
			body:       `{"dataset_id": "nonexistent"}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, _ := doJSON(t, srv, http.MethodPost, "/api/v1/reproject", tt.body)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestHandleSyncUnavailable(t *testing.T) {
	srv := newTestServer(t, nil)

	// No sync service configured: the route is not registered
	rr, _ := doJSON(t, srv, http.MethodPost, "/api/v1/sync", "")

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestHandleOpenAPI(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rr := httptest.NewRecorder()

	srv.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	contentType := rr.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", contentType, "application/json")
	}
}

func TestBoolToStatus(t *testing.T) {
	if boolToStatus(true) != "ok" {
		t.Error("boolToStatus(true) should return 'ok'")
	}
	if boolToStatus(false) != "unhealthy" {
		t.Error("boolToStatus(false) should return 'unhealthy'")
	}
}
