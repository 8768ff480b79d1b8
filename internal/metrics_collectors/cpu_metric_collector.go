package metrics_collectors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/cpu"
)

// DefaultCPUSampleWindow is how long CPU time is sampled when no window is configured.
const DefaultCPUSampleWindow = 500 * time.Millisecond

// CPUMetricCollector collects CPU usage over a short sampling window.
type CPUMetricCollector struct {
	Logger       zerolog.Logger
	SampleWindow time.Duration
}

func (c *CPUMetricCollector) Name() string {
	return "cpu"
}

// Collect blocks for the sampling window and returns the utilization as *float64.
func (c *CPUMetricCollector) Collect(ctx context.Context) (interface{}, error) {
	window := c.SampleWindow
	if window <= 0 {
		window = DefaultCPUSampleWindow
	}

	cpuPercentages, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		c.Logger.Error().Err(err).Msg("Failed to get CPU usage")
		return nil, fmt.Errorf("cpu usage: %w", err)
	}

	if len(cpuPercentages) == 0 {
		c.Logger.Warn().Msg("CPU usage data is empty")
		return nil, errors.New("cpu usage: no data")
	}

	c.Logger.Debug().Float64("cpu_usage", cpuPercentages[0]).Msg("CPU usage collected successfully")
	return &cpuPercentages[0], nil
}

func (c *CPUMetricCollector) Unit() string {
	return "percentage"
}

func (c *CPUMetricCollector) Description() string {
	return "Percentage of CPU utilization across all cores."
}
