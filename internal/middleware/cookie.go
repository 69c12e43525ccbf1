package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// GuestCookieName carries the guest credential: an access token right after the
	// access link is opened, then a session token once the guest is confirmed.
	GuestCookieName = "guest_token"

	guestCookieMaxAge = 365 * 24 * 60 * 60 // one year
)

// SetGuestCookie stores credential in the HttpOnly guest cookie.
func SetGuestCookie(c *gin.Context, credential string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     GuestCookieName,
		Value:    credential,
		Path:     "/",
		Secure:   IsSecureRequest(c.Request),
		HttpOnly: true,
		MaxAge:   guestCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearGuestCookie expires the guest cookie.
func ClearGuestCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     GuestCookieName,
		Value:    "",
		Path:     "/",
		Secure:   IsSecureRequest(c.Request),
		HttpOnly: true,
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
}

// GuestCredential returns the guest cookie value, or "" when absent.
func GuestCredential(c *gin.Context) string {
	value, err := c.Cookie(GuestCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

// IsSecureRequest reports whether the client reached us over TLS, directly or via a proxy.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	return strings.EqualFold(scheme, "https")
}
