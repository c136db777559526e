package services

import (
	"context"
	"time"

	"github.com/sbilibin2017/user-registry/internal/logger"
	"github.com/sbilibin2017/user-registry/internal/models"
)

//go:generate mockgen -source=health.go -destination=mock_health.go -package=services

// DefaultHealthTimeout bounds each dependency probe.
const DefaultHealthTimeout = 2 * time.Second

// StorePinger probes the backing store and returns its version string.
type StorePinger interface {
	Ping(ctx context.Context) (string, error)
}

// CachePinger probes the cache.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthService builds the composite health report.
type HealthService struct {
	store    StorePinger
	cache    CachePinger
	provider string
	timeout  time.Duration
	now      func() time.Time
}

// NewHealthService creates a HealthService. cache may be nil.
func NewHealthService(store StorePinger, cache CachePinger, provider string, timeout time.Duration) *HealthService {
	if timeout <= 0 {
		timeout = DefaultHealthTimeout
	}
	return &HealthService{
		store:    store,
		cache:    cache,
		provider: provider,
		timeout:  timeout,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Check probes every dependency. It never fails: an unreachable store is
// reported as a degraded status. The cache does not affect the overall status.
func (s *HealthService) Check(ctx context.Context) models.Health {
	health := models.Health{
		Status: models.HealthStatusHealthy,
		Database: models.DatabaseHealth{
			Status:   models.DependencyConnected,
			Version:  "unknown",
			Provider: s.provider,
		},
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	version, err := s.store.Ping(storeCtx)
	cancel()
	if err != nil {
		logger.Log.Warnw("store health probe failed", "provider", s.provider, "error", err)
		health.Status = models.HealthStatusDegraded
		health.Database.Status = models.DependencyUnreachable
		health.Database.Error = err.Error()
	} else {
		health.Database.Version = version
	}

	if s.cache != nil {
		cacheCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.cache.Ping(cacheCtx)
		cancel()

		health.Cache = &models.CacheHealth{Status: models.DependencyConnected}
		if err != nil {
			logger.Log.Warnw("cache health probe failed", "error", err)
			health.Cache.Status = models.DependencyUnreachable
			health.Cache.Error = err.Error()
		}
	}

	health.Timestamp = s.now()
	return health
}
