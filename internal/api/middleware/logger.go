package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/blogapi/pkg/logger"
)

// LoggerMiddleware creates request logging middleware
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")

	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(startTime),
			"client_ip", c.ClientIP(),
			"request_id", GetRequestID(c),
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("HTTP Request", fields...)
		case status >= 400:
			log.Warn("HTTP Request", fields...)
		default:
			log.Info("HTTP Request", fields...)
		}

		if len(c.Errors) > 0 {
			log.Error("Request errors", "request_id", GetRequestID(c), "errors", c.Errors.String())
		}
	}
}
