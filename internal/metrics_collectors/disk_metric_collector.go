package metrics_collectors

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/benmeehan/pcremote/internal/models"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/disk"
)

// DiskMetricCollector collects usage of the system volume.
type DiskMetricCollector struct {
	Logger zerolog.Logger
	Path   string
}

func (d *DiskMetricCollector) Name() string {
	return "disk"
}

func (d *DiskMetricCollector) Collect(ctx context.Context) (interface{}, error) {
	path := d.Path
	if path == "" {
		path = SystemVolume()
	}

	diskStats, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		d.Logger.Error().Err(err).Str("path", path).Msg("Failed to get disk usage")
		return nil, fmt.Errorf("disk usage of %s: %w", path, err)
	}
	return &models.DiskUsage{
		Path:        path,
		FreeBytes:   diskStats.Free,
		UsedPercent: diskStats.UsedPercent,
	}, nil
}

func (d *DiskMetricCollector) Unit() string {
	return "bytes"
}

func (d *DiskMetricCollector) Description() string {
	return "Free space and used percentage of the system volume."
}

// SystemVolume returns the mount point holding the OS.
func SystemVolume() string {
	if runtime.GOOS == "windows" {
		if drive := os.Getenv("SystemDrive"); drive != "" {
			return drive + `\`
		}
		return `C:\`
	}
	return "/"
}
