package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/romyseb/wedding/internal/locale"
	"github.com/romyseb/wedding/internal/services"
	apperrors "github.com/romyseb/wedding/pkg/errors"
	"github.com/romyseb/wedding/pkg/logger"
	"github.com/romyseb/wedding/pkg/response"
)

// ContextGuestSessionKey holds the *services.GuestSession of a gated request.
const ContextGuestSessionKey = "guest_session"

// GuestAuthenticator resolves the guest cookie into a session.
type GuestAuthenticator interface {
	Authenticate(ctx context.Context, credential string) (*services.GuestSession, error)
}

// GuestGate protects the invitation pages. Requests without a guest cookie are sent to
// the access page; rejected credentials are cleared and sent to the resend page.
func GuestGate(authenticator GuestAuthenticator, negotiator *locale.Negotiator) gin.HandlerFunc {
	log := logger.WithModule("guest-gate")

	return func(c *gin.Context) {
		loc := RouteLocale(c, negotiator)

		credential := GuestCredential(c)
		if credential == "" {
			c.Redirect(http.StatusFound, "/"+loc+"/acces")
			c.Abort()
			return
		}

		session, err := authenticator.Authenticate(c.Request.Context(), credential)
		if err != nil {
			if errors.Is(err, services.ErrTokenInvalid) || errors.Is(err, services.ErrValidation) {
				ClearGuestCookie(c)
				c.Redirect(http.StatusFound, "/"+loc+"/reenvio?reason=invalid")
				c.Abort()
				return
			}
			log.Error("guest authentication failed", zap.Error(err))
			response.Abort(c, apperrors.ErrInternalServer)
			return
		}

		if session.Renewed {
			SetGuestCookie(c, session.Token)
		}
		c.Set(ContextGuestSessionKey, session)
		c.Next()
	}
}

// GuestSessionFrom returns the session stored by GuestGate.
func GuestSessionFrom(c *gin.Context) (*services.GuestSession, bool) {
	value, ok := c.Get(ContextGuestSessionKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*services.GuestSession)
	return session, ok && session != nil
}

// RouteLocale returns the :locale path parameter when it names a site locale, otherwise
// the locale negotiated from Accept-Language.
func RouteLocale(c *gin.Context, negotiator *locale.Negotiator) string {
	if param := strings.ToLower(strings.TrimSpace(c.Param("locale"))); locale.IsSupported(param) {
		return param
	}
	if negotiator == nil {
		return locale.Default
	}
	return negotiator.FromRequest(c.Request)
}
