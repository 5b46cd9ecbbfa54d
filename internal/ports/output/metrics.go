package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncTransformCount increments the transform counter.
	IncTransformCount(projection string, direction string, success bool)

	// ObserveTransformDuration records batch transform duration.
	ObserveTransformDuration(projection string, direction string, duration time.Duration)

	// IncReprojectCount increments the dataset reprojection counter.
	IncReprojectCount(datasetID string, success bool)

	// ObserveReprojectDuration records dataset reprojection duration.
	ObserveReprojectDuration(datasetID string, duration time.Duration)

	// SetDatasetsLoaded sets the number of loaded datasets.
	SetDatasetsLoaded(count int)

	// IncStorageOperations increments storage operation counter.
	IncStorageOperations(operation string, success bool)

	// ObserveStorageDuration records storage operation duration.
	ObserveStorageDuration(operation string, duration time.Duration)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncTransformCount implements MetricsCollector.
func (n *NoOpMetrics) IncTransformCount(_ string, _ string, _ bool) {}

// ObserveTransformDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveTransformDuration(_ string, _ string, _ time.Duration) {}

// IncReprojectCount implements MetricsCollector.
func (n *NoOpMetrics) IncReprojectCount(_ string, _ bool) {}

// ObserveReprojectDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveReprojectDuration(_ string, _ time.Duration) {}

// SetDatasetsLoaded implements MetricsCollector.
func (n *NoOpMetrics) SetDatasetsLoaded(_ int) {}

// IncStorageOperations implements MetricsCollector.
func (n *NoOpMetrics) IncStorageOperations(_ string, _ bool) {}

// ObserveStorageDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveStorageDuration(_ string, _ time.Duration) {}
