package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jobrunner/goode/internal/domain"
	"github.com/jobrunner/goode/internal/ports/output"
	"github.com/jobrunner/goode/internal/projection"
)

// ReprojectService projects the point layers of registered datasets.
type ReprojectService struct {
	registry   *DatasetRegistry
	repo       output.DatasetRepository
	transforms *TransformService
	metrics    output.MetricsCollector
	logger     *slog.Logger
}

// NewReprojectService creates a new reprojection service.
func NewReprojectService(
	registry *DatasetRegistry,
	repo output.DatasetRepository,
	transforms *TransformService,
	metrics output.MetricsCollector,
	logger *slog.Logger,
) *ReprojectService {
	return &ReprojectService{
		registry:   registry,
		repo:       repo,
		transforms: transforms,
		metrics:    metrics,
		logger:     logger,
	}
}

// Reproject projects the point layers of a registered dataset.
func (s *ReprojectService) Reproject(ctx context.Context, req domain.ReprojectRequest) (*domain.ReprojectResponse, error) {
	start := time.Now()

	ds, err := s.registry.GetDataset(ctx, req.DatasetID)
	if err != nil {
		s.metrics.IncReprojectCount(req.DatasetID, false)
		return nil, err
	}
	if !s.registry.IsReady(ds.ID) {
		s.metrics.IncReprojectCount(ds.ID, false)
		return nil, domain.ErrNotReady
	}

	transformer, err := s.transforms.Transformer(req.Projection)
	if err != nil {
		s.metrics.IncReprojectCount(ds.ID, false)
		return nil, err
	}

	layers, err := s.selectLayers(ds, req.Layer)
	if err != nil {
		s.metrics.IncReprojectCount(ds.ID, false)
		return nil, err
	}

	response := &domain.ReprojectResponse{}
	for _, layer := range layers {
		result, err := s.reprojectLayer(ctx, ds, layer, transformer)
		if err != nil {
			s.metrics.IncReprojectCount(ds.ID, false)
			return nil, &domain.ReprojectError{DatasetID: ds.ID, Layer: layer.Name, Err: err}
		}
		response.AddResult(*result)
	}

	response.ProcessingTime = time.Since(start)
	s.metrics.IncReprojectCount(ds.ID, true)
	s.metrics.ObserveReprojectDuration(ds.ID, response.ProcessingTime)
	s.logger.Info("dataset reprojected", "id", ds.ID, "projection", transformer.Name(),
		"features", response.TotalFeatures, "skipped", response.TotalSkipped,
		"duration", response.ProcessingTime)

	return response, nil
}

// selectLayers resolves the layers a request addresses: the named point
// layer, or every point layer of the dataset.
func (s *ReprojectService) selectLayers(ds *domain.Dataset, name string) ([]domain.Layer, error) {
	if name == "" {
		layers := ds.PointLayers()
		if len(layers) == 0 {
			return nil, domain.ErrUnsupportedLayer
		}
		return layers, nil
	}

	layer, ok := ds.GetLayer(name)
	if !ok {
		return nil, domain.ErrLayerNotFound
	}
	if !layer.IsPointLayer() {
		return nil, domain.ErrUnsupportedLayer
	}
	return []domain.Layer{*layer}, nil
}

// reprojectLayer streams a layer's features through the transformer.
// Features the projection rejects as out of domain are counted and skipped;
// any other transform failure aborts the layer.
func (s *ReprojectService) reprojectLayer(
	ctx context.Context,
	ds *domain.Dataset,
	layer domain.Layer,
	transformer output.CoordinateTransformer,
) (*domain.ReprojectResult, error) {
	start := time.Now()

	result := &domain.ReprojectResult{
		DatasetID:   ds.ID,
		DatasetName: ds.Name,
		Layer:       layer.Name,
		Projection:  transformer.Name(),
		License:     ds.License,
	}

	err := s.repo.ReadPoints(ctx, ds.ID, layer.Name, func(f domain.Feature) error {
		planar, err := transformer.Forward(ctx, f.Location)
		if err != nil {
			if errors.Is(err, projection.ErrDomain) {
				result.Skipped++
				s.logger.Debug("feature outside projection domain",
					"dataset", ds.ID, "layer", layer.Name, "fid", f.ID)
				return nil
			}
			return err
		}
		result.Features = append(result.Features, domain.ProjectedFeature{
			Feature:  f,
			Location: planar,
		})
		result.Extent.Expand(planar.X, planar.Y)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.ProcessingTime = time.Since(start)
	return result, nil
}
