package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/romyseb/wedding/pkg/errors"
	"github.com/romyseb/wedding/pkg/logger"
	"github.com/romyseb/wedding/pkg/metrics"
	"github.com/romyseb/wedding/pkg/response"
)

// RateLimit limits requests per (client IP, route) within a fixed window. When the
// store fails the request is let through and the failure logged.
func RateLimit(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	log := logger.WithModule("ratelimit")

	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := "ratelimit:" + c.ClientIP() + "|" + c.Request.Method + " " + route

		count, ttl, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			log.Warn("rate limit store unavailable", zap.String("route", route), zap.Error(err))
			c.Next()
			return
		}

		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))

		if count > maxRequests {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
			metrics.RateLimited.WithLabelValues(routeLabel(c)).Inc()
			response.Abort(c, errors.ErrRateLimit)
			return
		}

		c.Next()
	}
}
