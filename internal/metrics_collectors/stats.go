package metrics_collectors

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benmeehan/pcremote/internal/models"
	"github.com/rs/zerolog"
)

const bytesPerGB = 1 << 30

// NewDefaultRegistry registers the cpu, memory and disk collectors.
func NewDefaultRegistry(logger zerolog.Logger, cpuWindow time.Duration, diskPath string) *MetricsRegistry {
	registry := NewMetricsRegistry()
	// Built-in collector names are distinct.
	_ = registry.Register(&CPUMetricCollector{Logger: logger, SampleWindow: cpuWindow})
	_ = registry.Register(&MemoryMetricCollector{Logger: logger})
	_ = registry.Register(&DiskMetricCollector{Logger: logger, Path: diskPath})
	return registry
}

// StatsCollector runs every registered collector concurrently and folds the
// results into a StatsResponse. Any collector failure fails the snapshot.
type StatsCollector struct {
	registry *MetricsRegistry
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewStatsCollector creates a StatsCollector bounded by timeout per snapshot.
func NewStatsCollector(registry *MetricsRegistry, timeout time.Duration, logger zerolog.Logger) *StatsCollector {
	return &StatsCollector{registry: registry, timeout: timeout, logger: logger}
}

// Stats collects a fresh snapshot.
func (s *StatsCollector) Stats(ctx context.Context) (*models.StatsResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]interface{})
		errs    []error
	)

	for name, collector := range s.registry.GetCollectors() {
		wg.Add(1)
		go func(name string, collector MetricCollector) {
			defer wg.Done()
			value, err := collector.Collect(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			results[name] = value
		}(name, collector)
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	stats := &models.StatsResponse{}
	for name, value := range results {
		switch v := value.(type) {
		case *float64:
			stats.CPU = round2(*v)
		case *models.MemoryUsage:
			stats.RAMPercent = round2(v.UsedPercent)
			stats.RAMTotalGB = round2(float64(v.TotalBytes) / bytesPerGB)
			stats.RAMUsedGB = round2(float64(v.UsedBytes) / bytesPerGB)
		case *models.DiskUsage:
			stats.DiskPercent = round2(v.UsedPercent)
			stats.DiskFreeGB = round2(float64(v.FreeBytes) / bytesPerGB)
		default:
			return nil, fmt.Errorf("collector %s returned unexpected %T", name, value)
		}
	}

	s.logger.Debug().Interface("stats", stats).Msg("Stats collected successfully")
	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
