package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/romyseb/wedding/pkg/metrics"
)

// unmatchedRoute labels requests that hit no route, keeping label cardinality bounded.
const unmatchedRoute = "unmatched"

// Metrics observes request latency per route template and tracks requests in flight.
// Paths are never used as labels since access pages carry tokens.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.InFlightRequests.Inc()
		defer metrics.InFlightRequests.Dec()

		start := time.Now()
		c.Next()

		metrics.APILatency.
			WithLabelValues(c.Request.Method, routeLabel(c), strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
