// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"crosstab/internal/worker"
)

// Pinger checks a dependency.
type Pinger interface {
	Ready(ctx context.Context) error
}

// QueueStats reports the worker queue.
type QueueStats interface {
	Stats() worker.Stats
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	*BaseHandler
	db    Pinger
	queue QueueStats
}

// NewHealthHandler creates a new health handler. db may be nil when the run
// journal is kept in memory.
func NewHealthHandler(base *BaseHandler, db Pinger, queue QueueStats) *HealthHandler {
	return &HealthHandler{BaseHandler: base, db: db, queue: queue}
}

// Diagnostics answers the platform's bot availability check.
// GET /diagnostics/check
func (h *HealthHandler) Diagnostics(c *gin.Context) {
	h.NoContent(c)
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]any{}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db.Ready(c.Request.Context()); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "healthy"
		}
	}

	if h.queue != nil {
		s := h.queue.Stats()
		checks["queue"] = map[string]any{
			"queued":    s.Queued,
			"in_flight": s.InFlight,
			"completed": s.Completed,
			"rejected":  s.Rejected,
		}
	}

	body := gin.H{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "error"
	}
	c.JSON(status, body)
}
