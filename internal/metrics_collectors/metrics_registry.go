package metrics_collectors

import "fmt"

// MetricsRegistry holds the collectors that make up a stats snapshot, keyed
// by collector name.
type MetricsRegistry struct {
	collectors map[string]MetricCollector
}

func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		collectors: make(map[string]MetricCollector),
	}
}

// Register adds a collector. Names must be unique within a snapshot.
func (r *MetricsRegistry) Register(collector MetricCollector) error {
	name := collector.Name()
	if _, exists := r.collectors[name]; exists {
		return fmt.Errorf("collector %s is already registered", name)
	}
	r.collectors[name] = collector
	return nil
}

// GetCollectors returns a copy of the registered collectors.
func (r *MetricsRegistry) GetCollectors() map[string]MetricCollector {
	out := make(map[string]MetricCollector, len(r.collectors))
	for name, c := range r.collectors {
		out[name] = c
	}
	return out
}
