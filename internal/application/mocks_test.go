package application

import (
	"context"
	"io"

	"github.com/jobrunner/goode/internal/domain"
	"github.com/jobrunner/goode/internal/ports/output"
)

// mockRepository implements output.DatasetRepository for testing.
type mockRepository struct {
	datasets map[string]*domain.Dataset
	features map[string][]domain.Feature
	openErr  error
	readErr  error
}

func (m *mockRepository) Open(_ context.Context, path string) (*domain.Dataset, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	if m.datasets != nil {
		if ds, ok := m.datasets[path]; ok {
			return ds, nil
		}
	}
	return &domain.Dataset{
		ID:   deriveDatasetID(path),
		Name: path,
		Path: path,
	}, nil
}

func (m *mockRepository) Close(_ context.Context, _ string) error {
	return nil
}

func (m *mockRepository) GetLayers(_ context.Context, datasetID string) ([]domain.Layer, error) {
	if m.datasets != nil {
		if ds, ok := m.datasets[datasetID]; ok {
			return ds.Layers, nil
		}
	}
	return nil, domain.ErrDatasetNotFound
}

func (m *mockRepository) ReadPoints(_ context.Context, datasetID, layerName string, fn func(domain.Feature) error) error {
	if m.readErr != nil {
		return m.readErr
	}
	key := datasetID + ":" + layerName
	for _, f := range m.features[key] {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// mockStorage implements output.ObjectStorage for testing.
type mockStorage struct {
	objects     []output.StorageObject
	downloadErr error
	listErr     error
}

func (m *mockStorage) List(_ context.Context) ([]output.StorageObject, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.objects, nil
}

func (m *mockStorage) Download(_ context.Context, _, _ string) error {
	return m.downloadErr
}

func (m *mockStorage) GetReader(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, nil
}

func (m *mockStorage) Exists(_ context.Context, _ string) (bool, error) {
	return true, nil
}
