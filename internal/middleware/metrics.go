package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/service"
)

// Metrics observes every request under its route template. Requests that did
// not match a route are grouped under "unmatched" to keep label cardinality bounded.
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
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
