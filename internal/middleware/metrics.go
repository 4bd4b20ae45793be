package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/navmenu-api/internal/service"
)

// Metrics records method/route/status counters and latency for every request.
// Unmatched routes fall back to the raw path so 404 probes stay visible
// without exploding label cardinality on real routes.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
