package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/romyseb/wedding/pkg/errors"
	"github.com/romyseb/wedding/pkg/logger"
	"github.com/romyseb/wedding/pkg/response"
)

// Recovery turns a panic into a 500 envelope. The panic value is logged under the
// matched route, never the raw path, because access pages carry tokens in the URL.
func Recovery() gin.HandlerFunc {
	log := logger.WithModule("http")

	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			log.Error("handler panicked",
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.String("panic", fmt.Sprint(recovered)),
				zap.Stack("stack"),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.Abort(c, errors.ErrInternalServer)
		}()
		c.Next()
	}
}

// NotFoundHandler answers unknown routes with a JSON 404.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, errors.ErrNotFound.WithMessage(fmt.Sprintf("route %s %s not found", c.Request.Method, c.Request.URL.Path)))
}
