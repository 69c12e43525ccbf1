package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/romyseb/wedding/internal/middleware"
	"github.com/romyseb/wedding/internal/services"
	appErrors "github.com/romyseb/wedding/pkg/errors"
	"github.com/romyseb/wedding/pkg/response"
)

// requestContext is the context service calls run under. Handlers invoked without an
// http.Request get context.Background.
func requestContext(c *gin.Context) context.Context {
	if c != nil && c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}

// currentGuest returns the session attached by the guest gate and answers 401 when
// the route was reached without one.
func currentGuest(c *gin.Context) (*services.GuestSession, bool) {
	session, ok := middleware.GuestSessionFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return session, true
}
