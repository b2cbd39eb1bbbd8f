package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/blogapi/internal/metrics"
)

// Metrics exposes the registry in Prometheus text format
func Metrics(registry *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		registry.WritePrometheus(c.Writer)
	}
}
