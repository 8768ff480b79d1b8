package models

// StatsResponse is the agent's resource usage snapshot.
type StatsResponse struct {
	CPU         float64 `json:"cpu"`          // CPU utilization over the sampling window, percent
	RAMPercent  float64 `json:"ram_percent"`  // Used memory, percent
	RAMTotalGB  float64 `json:"ram_total_gb"` // Total memory in GiB
	RAMUsedGB   float64 `json:"ram_used_gb"`  // Used memory in GiB
	DiskPercent float64 `json:"disk_percent"` // Used space on the system volume, percent
	DiskFreeGB  float64 `json:"disk_free_gb"` // Free space on the system volume in GiB
}

// MemoryUsage is the memory collector's result.
type MemoryUsage struct {
	TotalBytes  uint64
	UsedBytes   uint64
	UsedPercent float64
}

// DiskUsage is the disk collector's result.
type DiskUsage struct {
	Path        string
	FreeBytes   uint64
	UsedPercent float64
}
