package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"supportdesk/pkg/database"
)

// HealthHandlers exposes liveness/readiness probes
type HealthHandlers struct {
	pools *database.Pools
	redis *redis.Client
}

func NewHealthHandlers(pools *database.Pools, redisClient *redis.Client) *HealthHandlers {
	return &HealthHandlers{pools: pools, redis: redisClient}
}

// Health reports process liveness
func (h *HealthHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports readiness: both the database and the session store must
// answer before traffic is admitted
func (h *HealthHandlers) Ready(c echo.Context) error {
	ctx := c.Request().Context()

	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := h.pools.Admin.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	overall := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	return c.JSON(status, map[string]interface{}{
		"status": overall,
		"checks": checks,
	})
}
