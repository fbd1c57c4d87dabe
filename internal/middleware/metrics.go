package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acadgrid/timetable-api/internal/service"
)

// Metrics returns middleware that captures request metrics using the provided service.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			// Unmatched routes would explode label cardinality if we used the raw URL.
			path = "unmatched"
		}
		if path == "/metrics" || path == "/health" || path == "/ready" {
			return
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
