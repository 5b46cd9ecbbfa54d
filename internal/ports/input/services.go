// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/jobrunner/goode/internal/domain"
)

// TransformService defines the primary port for coordinate transforms.
type TransformService interface {
	// Forward projects geographic coordinates to the plane.
	Forward(ctx context.Context, req domain.TransformRequest) (*domain.TransformResult, error)

	// Inverse projects planar coordinates back to geographic coordinates.
	Inverse(ctx context.Context, req domain.TransformRequest) (*domain.TransformResult, error)

	// Projections returns the projections available to clients.
	Projections(ctx context.Context) ([]domain.ProjectionInfo, error)
}

// ReprojectService defines the primary port for dataset reprojection.
type ReprojectService interface {
	// Reproject projects the point layers of a registered dataset.
	Reproject(ctx context.Context, req domain.ReprojectRequest) (*domain.ReprojectResponse, error)
}

// DatasetCatalog defines the primary port for dataset management.
type DatasetCatalog interface {
	// ListDatasets returns all registered datasets.
	ListDatasets(ctx context.Context) ([]domain.Dataset, error)

	// GetDataset returns a specific dataset by ID.
	GetDataset(ctx context.Context, id string) (*domain.Dataset, error)

	// GetDatasetStatus returns the status of a dataset.
	GetDatasetStatus(ctx context.Context, id string) (domain.DatasetStatus, error)
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true if the service is ready to accept requests.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy        bool              // Overall health status
	Ready          bool              // Ready to accept requests
	DatasetsLoaded int               // Number of loaded datasets
	DatasetsReady  int               // Number of ready datasets
	Projections    int               // Number of registered projections
	Components     map[string]string // Component statuses
}
