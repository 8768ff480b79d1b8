package metrics_collectors

import (
	"context"
)

// MetricCollector defines the interface for collecting a specific metric.
type MetricCollector interface {
	Name() string                                     // Name of the metric (e.g., "cpu", "memory")
	Collect(ctx context.Context) (interface{}, error) // Collect the metric data
	Unit() string                                     // Unit of the metric (e.g., "percentage", "bytes")
	Description() string                              // Description of the metric
}
