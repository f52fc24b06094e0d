package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/infrastructure/storage/postgres"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	pool    *postgres.Pool
	started time.Time
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pool *postgres.Pool, version string) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		started: time.Now(),
		version: version,
	}
}

// Live handles GET /health/live. Always OK while the process runs.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready. Verifies database connectivity.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.pool.Unwrap().Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Info handles GET /health/info.
func (h *HealthHandler) Info(c *gin.Context) {
	stats := postgres.GetPoolStats(h.pool.Unwrap())
	c.JSON(http.StatusOK, gin.H{
		"version":    h.version,
		"uptime_sec": int64(time.Since(h.started).Seconds()),
		"db_pool": gin.H{
			"total_conns": stats.TotalConns,
			"idle_conns":  stats.IdleConns,
			"max_conns":   stats.MaxConns,
		},
	})
}
