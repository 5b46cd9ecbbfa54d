package application

import (
	"context"

	"github.com/jobrunner/goode/internal/domain"
	"github.com/jobrunner/goode/internal/ports/input"
	"github.com/jobrunner/goode/internal/projection"
)

// HealthService provides health check functionality.
type HealthService struct {
	registry   *DatasetRegistry
	transforms *TransformService
}

// NewHealthService creates a new health service.
func NewHealthService(registry *DatasetRegistry, transforms *TransformService) *HealthService {
	return &HealthService{
		registry:   registry,
		transforms: transforms,
	}
}

// IsHealthy returns true if the service is healthy.
func (s *HealthService) IsHealthy(ctx context.Context) bool {
	// The transform core must be able to resolve the default projection.
	_, err := s.transforms.Transformer("")
	return err == nil
}

// IsReady returns true if the service is ready to accept requests.
func (s *HealthService) IsReady(ctx context.Context) bool {
	if !s.IsHealthy(ctx) {
		return false
	}

	datasets, err := s.registry.ListDatasets(ctx)
	if err != nil {
		return false
	}

	// Ready if at least one dataset is ready
	for _, ds := range datasets {
		if ds.IsReady() {
			return true
		}
	}

	// Also ready if no datasets are configured: the transform API does not
	// depend on any dataset
	return len(datasets) == 0
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	datasets, _ := s.registry.ListDatasets(ctx)

	loaded := len(datasets)
	ready := 0
	for _, ds := range datasets {
		if ds.IsReady() {
			ready++
		}
	}

	components := map[string]string{
		"storage":    "ok",
		"projection": "ok",
	}
	if !s.IsHealthy(ctx) {
		components["projection"] = "default projection unavailable"
	}

	return input.HealthDetails{
		Healthy:        s.IsHealthy(ctx),
		Ready:          s.IsReady(ctx),
		DatasetsLoaded: loaded,
		DatasetsReady:  ready,
		Projections:    len(projection.Names()),
		Components:     components,
	}
}

// DatasetHealth contains health info for a single dataset.
type DatasetHealth struct {
	ID     string
	Status domain.DatasetStatus
	Ready  bool
}

// GetDatasetHealth returns health info for all datasets.
func (s *HealthService) GetDatasetHealth(ctx context.Context) []DatasetHealth {
	datasets, _ := s.registry.ListDatasets(ctx)

	health := make([]DatasetHealth, len(datasets))
	for i, ds := range datasets {
		status, _ := s.registry.GetDatasetStatus(ctx, ds.ID)
		health[i] = DatasetHealth{
			ID:     ds.ID,
			Status: status,
			Ready:  ds.IsReady(),
		}
	}

	return health
}
