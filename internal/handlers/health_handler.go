package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"queue-manager-api/internal/models"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler reports service health
type HealthHandler struct {
	checker   HealthChecker
	mode      string
	startedAt time.Time
}

// NewHealthHandler creates a health handler for the given deployment mode
func NewHealthHandler(checker HealthChecker, mode string) *HealthHandler {
	return &HealthHandler{
		checker:   checker,
		mode:      mode,
		startedAt: time.Now(),
	}
}

// @Summary Health check
// @Description Report database reachability, deployment mode and uptime
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthCheck
// @Failure 503 {object} models.HealthCheck
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	health := models.HealthCheck{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   Version,
		Mode:      h.mode,
		Services:  map[string]string{"database": "healthy"},
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	}

	status := http.StatusOK
	if err := h.checker.Health(c.Request.Context()); err != nil {
		health.Status = "unhealthy"
		health.Services["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, health)
}
