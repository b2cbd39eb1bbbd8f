package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/blogapi/internal/repository"
	"github.com/amiyamandal-dev/blogapi/pkg/logger"
)

// HealthChecker is implemented by every store backend
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	store   HealthChecker
	pool    repository.Pool
	driver  string
	timeout time.Duration
	logger  *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store HealthChecker, pool repository.Pool, driver string, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		pool:    pool,
		driver:  driver,
		timeout: 2 * time.Second,
		logger:  logger.WithComponent("health-handler"),
	}
}

// Health returns basic health status
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Readiness checks if the article store can serve requests
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	err := h.store.HealthCheck(ctx)
	healthy := err == nil

	status := "ready"
	code := http.StatusOK
	if !healthy {
		status = "not ready"
		code = http.StatusServiceUnavailable
		h.logger.Warn("Store health check failed", "driver", h.driver, "error", err)
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": gin.H{
			"store": gin.H{
				"driver":  h.driver,
				"healthy": healthy,
				"pool":    h.pool.Stats(),
			},
		},
	})
}

// Liveness checks if the service is alive
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
