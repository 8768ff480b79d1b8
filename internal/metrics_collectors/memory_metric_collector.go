package metrics_collectors

import (
	"context"
	"fmt"

	"github.com/benmeehan/pcremote/internal/models"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/mem"
)

// MemoryMetricCollector collects virtual memory usage.
type MemoryMetricCollector struct {
	Logger zerolog.Logger
}

// Name returns the identifier for the memory metric collector.
func (m *MemoryMetricCollector) Name() string {
	return "memory"
}

// Collect retrieves total/used memory as *models.MemoryUsage.
func (m *MemoryMetricCollector) Collect(ctx context.Context) (interface{}, error) {
	m.Logger.Debug().Msg("Collecting memory usage metrics")

	memStats, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		m.Logger.Error().Err(err).Msg("Failed to retrieve memory statistics")
		return nil, fmt.Errorf("memory usage: %w", err)
	}

	m.Logger.Debug().
		Float64("memory_usage_percent", memStats.UsedPercent).
		Msg("Memory usage collected successfully")

	return &models.MemoryUsage{
		TotalBytes:  memStats.Total,
		UsedBytes:   memStats.Used,
		UsedPercent: memStats.UsedPercent,
	}, nil
}

// Unit specifies the unit for memory usage metrics.
func (m *MemoryMetricCollector) Unit() string {
	return "bytes"
}

// Description provides details of the memory usage metrics collected.
func (m *MemoryMetricCollector) Description() string {
	return "Total and used virtual memory."
}
