package models

import "time"

const (
	HealthStatusHealthy  = "healthy"
	HealthStatusDegraded = "degraded"

	DependencyConnected   = "connected"
	DependencyUnreachable = "unreachable"
)

// DatabaseHealth describes the backing store probe.
// swagger:model DatabaseHealth
type DatabaseHealth struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Provider string `json:"provider"`
	Error    string `json:"error,omitempty"`
}

// CacheHealth describes the cache probe.
// swagger:model CacheHealth
type CacheHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health is the composite health report.
// swagger:model Health
type Health struct {
	Status    string         `json:"status"`
	Database  DatabaseHealth `json:"database"`
	Cache     *CacheHealth   `json:"cache,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Healthy reports whether the overall status is healthy.
func (h Health) Healthy() bool {
	return h.Status == HealthStatusHealthy
}
