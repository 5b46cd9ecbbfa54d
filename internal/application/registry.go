// Package application contains the application services.
package application

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jobrunner/goode/internal/domain"
	"github.com/jobrunner/goode/internal/ports/output"
)

// DatasetRegistry manages loaded GeoPackage datasets.
type DatasetRegistry struct {
	mu        sync.RWMutex
	datasets  map[string]*datasetEntry
	repo      output.DatasetRepository
	storage   output.ObjectStorage
	metrics   output.MetricsCollector
	logger    *slog.Logger
	localPath string
}

type datasetEntry struct {
	Dataset *domain.Dataset
	Status  domain.DatasetStatus
	Error   error
}

// NewDatasetRegistry creates a new dataset registry.
func NewDatasetRegistry(
	repo output.DatasetRepository,
	storage output.ObjectStorage,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	localPath string,
) *DatasetRegistry {
	return &DatasetRegistry{
		datasets:  make(map[string]*datasetEntry),
		repo:      repo,
		storage:   storage,
		metrics:   metrics,
		logger:    logger,
		localPath: localPath,
	}
}

// LoadDataset loads a GeoPackage dataset from the given path.
func (r *DatasetRegistry) LoadDataset(ctx context.Context, path string) error {
	r.logger.Info("loading dataset", "path", path)

	ds, err := r.repo.Open(ctx, path)
	if err != nil {
		r.logger.Error("failed to open dataset", "path", path, "error", err)
		return err
	}

	if len(ds.PointLayers()) == 0 {
		r.logger.Warn("dataset has no point layers", "id", ds.ID)
	}

	r.mu.Lock()
	ds.LoadedAt = time.Now()
	r.datasets[ds.ID] = &datasetEntry{
		Dataset: ds,
		Status:  domain.StatusReady,
	}
	r.mu.Unlock()

	r.updateMetrics()
	r.logger.Info("dataset loaded", "id", ds.ID, "layers", len(ds.Layers))

	return nil
}

// UnloadDataset unloads a dataset.
func (r *DatasetRegistry) UnloadDataset(ctx context.Context, datasetID string) error {
	r.logger.Info("unloading dataset", "id", datasetID)

	r.mu.Lock()
	if entry, ok := r.datasets[datasetID]; ok {
		entry.Status = domain.StatusUnloading
	}
	r.mu.Unlock()

	if err := r.repo.Close(ctx, datasetID); err != nil {
		r.logger.Error("failed to close dataset", "id", datasetID, "error", err)
		return err
	}

	r.mu.Lock()
	delete(r.datasets, datasetID)
	r.mu.Unlock()

	r.updateMetrics()
	return nil
}

// ListDatasets returns all registered datasets.
func (r *DatasetRegistry) ListDatasets(_ context.Context) ([]domain.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	datasets := make([]domain.Dataset, 0, len(r.datasets))
	for _, entry := range r.datasets {
		datasets = append(datasets, *entry.Dataset)
	}

	return datasets, nil
}

// GetDataset returns a specific dataset by ID.
func (r *DatasetRegistry) GetDataset(_ context.Context, id string) (*domain.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.datasets[id]
	if !ok {
		return nil, domain.ErrDatasetNotFound
	}

	return entry.Dataset, nil
}

// GetDatasetStatus returns the status of a dataset.
func (r *DatasetRegistry) GetDatasetStatus(_ context.Context, id string) (domain.DatasetStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.datasets[id]
	if !ok {
		return "", domain.ErrDatasetNotFound
	}

	return entry.Status, nil
}

// IsReady returns true if a dataset is ready for reprojection.
func (r *DatasetRegistry) IsReady(datasetID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.datasets[datasetID]
	if !ok {
		return false
	}

	return entry.Status == domain.StatusReady
}

// ReadyDatasetIDs returns IDs of all ready datasets.
func (r *DatasetRegistry) ReadyDatasetIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0)
	for id, entry := range r.datasets {
		if entry.Status == domain.StatusReady {
			ids = append(ids, id)
		}
	}
	return ids
}

// updateMetrics updates the metrics collector with current dataset counts.
func (r *DatasetRegistry) updateMetrics() {
	r.mu.RLock()
	total := len(r.datasets)
	r.mu.RUnlock()

	r.metrics.SetDatasetsLoaded(total)
}

// LoadAll loads all datasets from storage.
func (r *DatasetRegistry) LoadAll(ctx context.Context) error {
	r.logger.Info("loading all datasets from storage")

	objects, err := r.storage.List(ctx)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		localPath := filepath.Join(r.localPath, obj.Key)
		if err := r.storage.Download(ctx, obj.Key, localPath); err != nil {
			r.logger.Error("failed to download dataset", "key", obj.Key, "error", err)
			continue
		}

		if err := r.LoadDataset(ctx, localPath); err != nil {
			r.logger.Error("failed to load dataset", "path", localPath, "error", err)
		}
	}

	return nil
}

// IsLoaded returns true if a dataset with the given ID is already loaded.
func (r *DatasetRegistry) IsLoaded(datasetID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.datasets[datasetID]
	return ok
}

// DatasetCount returns the number of loaded datasets.
func (r *DatasetRegistry) DatasetCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.datasets)
}

// SyncStats contains statistics from a sync operation.
type SyncStats struct {
	Added   int
	Removed int
}

// Sync synchronizes with remote storage, downloading new datasets and
// removing datasets that no longer exist in remote storage.
// Returns statistics about added and removed datasets.
func (r *DatasetRegistry) Sync(ctx context.Context) (SyncStats, error) {
	r.logger.Info("syncing datasets from storage")

	objects, err := r.storage.List(ctx)
	if err != nil {
		return SyncStats{}, err
	}

	// Build set of remote dataset IDs
	remoteDatasets := make(map[string]string) // datasetID -> objectKey
	for _, obj := range objects {
		datasetID := deriveDatasetID(obj.Key)
		remoteDatasets[datasetID] = obj.Key
	}

	stats := SyncStats{}

	// Add new datasets
	for datasetID, objectKey := range remoteDatasets {
		if r.IsLoaded(datasetID) {
			r.logger.Debug("dataset already loaded, skipping", "id", datasetID)
			continue
		}

		localPath := filepath.Join(r.localPath, objectKey)
		if err := r.storage.Download(ctx, objectKey, localPath); err != nil {
			r.logger.Error("failed to download dataset", "key", objectKey, "error", err)
			continue
		}

		if err := r.LoadDataset(ctx, localPath); err != nil {
			r.logger.Error("failed to load dataset", "path", localPath, "error", err)
			continue
		}

		stats.Added++
		r.logger.Info("new dataset synced", "id", datasetID)
	}

	// Remove datasets that no longer exist in remote storage
	datasetsToRemove := r.findDatasetsToRemove(remoteDatasets)
	for _, datasetID := range datasetsToRemove {
		r.logger.Info("removing dataset not in remote storage", "id", datasetID)

		localPath := r.getDatasetPath(datasetID)

		if err := r.UnloadDataset(ctx, datasetID); err != nil {
			r.logger.Error("failed to unload removed dataset", "id", datasetID, "error", err)
			continue
		}

		// Delete local cache file
		if localPath != "" {
			if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
				r.logger.Warn("failed to delete local cache file", "path", localPath, "error", err)
			} else {
				r.logger.Debug("deleted local cache file", "path", localPath)
			}
		}

		stats.Removed++
	}

	r.logger.Info("sync completed", "added", stats.Added, "removed", stats.Removed, "total", r.DatasetCount())
	return stats, nil
}

// findDatasetsToRemove returns dataset IDs that are loaded but not in remote storage.
func (r *DatasetRegistry) findDatasetsToRemove(remoteDatasets map[string]string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var toRemove []string
	for datasetID := range r.datasets {
		if _, exists := remoteDatasets[datasetID]; !exists {
			toRemove = append(toRemove, datasetID)
		}
	}
	return toRemove
}

// getDatasetPath returns the local file path for a loaded dataset.
func (r *DatasetRegistry) getDatasetPath(datasetID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.datasets[datasetID]; ok && entry.Dataset != nil {
		return entry.Dataset.Path
	}
	return ""
}

// deriveDatasetID extracts a dataset ID from a file path or object key.
func deriveDatasetID(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
