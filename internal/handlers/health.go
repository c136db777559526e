package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/user-registry/internal/models"
)

//go:generate mockgen -source=health.go -destination=mock_health.go -package=handlers

// HealthChecker defines the interface that the service must implement.
type HealthChecker interface {
	Check(ctx context.Context) models.Health
}

// NewHealthHandler returns the health report handler.
// @Summary Health check
// @Description Probes the store and, when configured, the cache. Responds 503 when the store is unreachable.
// @Tags system
// @Produce json
// @Success 200 {object} models.Health "Healthy"
// @Failure 503 {object} models.Health "Degraded"
// @Router /health [get]
func NewHealthHandler(svc HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := svc.Check(r.Context())

		code := http.StatusOK
		if !health.Healthy() {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, health)
	}
}
