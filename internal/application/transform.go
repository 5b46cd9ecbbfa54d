package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jobrunner/goode/internal/domain"
	"github.com/jobrunner/goode/internal/ports/output"
	"github.com/jobrunner/goode/internal/projection"
)

// projectionCatalog lists the projections exposed to clients, with their
// registry aliases.
var projectionCatalog = []domain.ProjectionInfo{
	{Name: "Goode_Homolosine", Aliases: []string{"Interrupted_Goode_Homolosine", "Homolosine", "igh"}},
	{Name: "Sinusoidal", Aliases: []string{"Sanson_Flamsteed", "sinu"}},
	{Name: "Mollweide", Aliases: []string{"Homalographic", "moll"}},
}

// TransformService handles batch coordinate transforms.
type TransformService struct {
	mu          sync.RWMutex
	cache       map[string]projection.Projection
	params      projection.Params
	defaultName string
	maxBatch    int
	metrics     output.MetricsCollector
	logger      *slog.Logger
}

// TransformServiceConfig holds configuration for the transform service.
type TransformServiceConfig struct {
	DefaultProjection string
	MaxBatchSize      int
	Params            projection.Params
}

// NewTransformService creates a new transform service.
func NewTransformService(
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg TransformServiceConfig,
) *TransformService {
	if cfg.DefaultProjection == "" {
		cfg.DefaultProjection = "Goode_Homolosine"
	}
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = 10000
	}

	return &TransformService{
		cache:       make(map[string]projection.Projection),
		params:      cfg.Params,
		defaultName: cfg.DefaultProjection,
		maxBatch:    cfg.MaxBatchSize,
		metrics:     metrics,
		logger:      logger,
	}
}

// Forward projects geographic coordinates to the plane.
func (s *TransformService) Forward(ctx context.Context, req domain.TransformRequest) (*domain.TransformResult, error) {
	start := time.Now()

	name, proj, err := s.projectionFor(req.Projection)
	if err != nil {
		return nil, err
	}
	if err := s.checkBatchSize(len(req.Geographic)); err != nil {
		return nil, err
	}

	result := &domain.TransformResult{
		Projection: name,
		Planar:     make([]domain.Planar, 0, len(req.Geographic)),
	}

	for i, g := range req.Geographic {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := g.Validate(); err != nil {
			s.metrics.IncTransformCount(name, "forward", false)
			return nil, &domain.TransformError{Projection: name, Direction: "forward", Index: i, Err: err}
		}
		lon, lat := g.Radians()
		x, y, err := proj.Forward(lon, lat)
		if err != nil {
			s.metrics.IncTransformCount(name, "forward", false)
			return nil, &domain.TransformError{Projection: name, Direction: "forward", Index: i, Err: err}
		}
		result.Planar = append(result.Planar, domain.Planar{X: x, Y: y})
	}

	result.ProcessingTime = time.Since(start)
	s.metrics.IncTransformCount(name, "forward", true)
	s.metrics.ObserveTransformDuration(name, "forward", result.ProcessingTime)
	s.logger.Debug("forward transform completed", "projection", name,
		"count", len(result.Planar), "duration", result.ProcessingTime)

	return result, nil
}

// Inverse projects planar coordinates back to geographic coordinates.
func (s *TransformService) Inverse(ctx context.Context, req domain.TransformRequest) (*domain.TransformResult, error) {
	start := time.Now()

	name, proj, err := s.projectionFor(req.Projection)
	if err != nil {
		return nil, err
	}
	if err := s.checkBatchSize(len(req.Planar)); err != nil {
		return nil, err
	}

	result := &domain.TransformResult{
		Projection: name,
		Geographic: make([]domain.Geographic, 0, len(req.Planar)),
	}

	for i, p := range req.Planar {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			s.metrics.IncTransformCount(name, "inverse", false)
			return nil, &domain.TransformError{Projection: name, Direction: "inverse", Index: i, Err: err}
		}
		lon, lat, err := proj.Inverse(p.X, p.Y)
		if err != nil {
			s.metrics.IncTransformCount(name, "inverse", false)
			return nil, &domain.TransformError{Projection: name, Direction: "inverse", Index: i, Err: err}
		}
		result.Geographic = append(result.Geographic, domain.GeographicFromRadians(lon, lat))
	}

	result.ProcessingTime = time.Since(start)
	s.metrics.IncTransformCount(name, "inverse", true)
	s.metrics.ObserveTransformDuration(name, "inverse", result.ProcessingTime)
	s.logger.Debug("inverse transform completed", "projection", name,
		"count", len(result.Geographic), "duration", result.ProcessingTime)

	return result, nil
}

// Projections returns the projections available to clients.
func (s *TransformService) Projections(_ context.Context) ([]domain.ProjectionInfo, error) {
	registered := make(map[string]bool)
	for _, name := range projection.Names() {
		registered[name] = true
	}

	infos := make([]domain.ProjectionInfo, 0, len(projectionCatalog))
	for _, info := range projectionCatalog {
		if registered[info.Name] {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// DefaultProjection returns the projection applied when a request names none.
func (s *TransformService) DefaultProjection() string {
	return s.defaultName
}

// Transformer returns a CoordinateTransformer bound to the named projection,
// or to the default projection if name is empty.
func (s *TransformService) Transformer(name string) (output.CoordinateTransformer, error) {
	resolved, proj, err := s.projectionFor(name)
	if err != nil {
		return nil, err
	}
	return &boundTransformer{name: resolved, proj: proj}, nil
}

// projectionFor resolves a projection name to a cached instance.
func (s *TransformService) projectionFor(name string) (string, projection.Projection, error) {
	if name == "" {
		name = s.defaultName
	}

	s.mu.RLock()
	proj, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return name, proj, nil
	}

	proj, err := projection.New(name, s.params)
	if err != nil {
		if errors.Is(err, projection.ErrConfiguration) {
			return "", nil, fmt.Errorf("%q: %w", name, domain.ErrUnknownProjection)
		}
		return "", nil, err
	}

	s.mu.Lock()
	s.cache[name] = proj
	s.mu.Unlock()

	return name, proj, nil
}

func (s *TransformService) checkBatchSize(n int) error {
	if n == 0 {
		return &domain.ValidationError{
			Field:      "coordinates",
			Value:      n,
			Constraint: "non-empty",
			Message:    "request contains no coordinates",
		}
	}
	if n > s.maxBatch {
		return &domain.ValidationError{
			Field:      "coordinates",
			Value:      n,
			Constraint: fmt.Sprintf("<= %d", s.maxBatch),
			Message:    "batch exceeds the configured maximum",
		}
	}
	return nil
}

// boundTransformer adapts a projection instance to the per-coordinate
// transformer port.
type boundTransformer struct {
	name string
	proj projection.Projection
}

// Forward implements output.CoordinateTransformer.
func (t *boundTransformer) Forward(_ context.Context, g domain.Geographic) (domain.Planar, error) {
	lon, lat := g.Radians()
	x, y, err := t.proj.Forward(lon, lat)
	if err != nil {
		return domain.Planar{}, err
	}
	return domain.Planar{X: x, Y: y}, nil
}

// Inverse implements output.CoordinateTransformer.
func (t *boundTransformer) Inverse(_ context.Context, p domain.Planar) (domain.Geographic, error) {
	lon, lat, err := t.proj.Inverse(p.X, p.Y)
	if err != nil {
		return domain.Geographic{}, err
	}
	return domain.GeographicFromRadians(lon, lat), nil
}

// Name implements output.CoordinateTransformer.
func (t *boundTransformer) Name() string {
	return t.name
}
