package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func serveWithSecurityHeaders(t *testing.T, req *http.Request) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/:locale/acces", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Header()
}

func TestSecurityHeaders(t *testing.T) {
	headers := serveWithSecurityHeaders(t, httptest.NewRequest(http.MethodGet, "http://romyseb.ch/es/acces?token=abc", nil))

	require.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	require.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	require.Contains(t, headers.Get("Content-Security-Policy"), "img-src 'self' data:")
	require.Equal(t, "no-referrer", headers.Get("Referrer-Policy"))
	require.Equal(t, "no-store", headers.Get("Cache-Control"))
	require.Equal(t, "geolocation=(), microphone=(), camera=()", headers.Get("Permissions-Policy"))
	require.Empty(t, headers.Get("Strict-Transport-Security"), "plain http must not advertise HSTS")
}

func TestSecurityHeadersHSTSBehindProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://romyseb.ch/fr/acces", nil)
	req.Header.Set("X-Forwarded-Proto", "https")

	headers := serveWithSecurityHeaders(t, req)
	require.Equal(t, strictTransportSecurity, headers.Get("Strict-Transport-Security"))
}

func TestIsSecureRequest(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "http://romyseb.ch/", nil)
	require.False(t, IsSecureRequest(plain))

	proxied := httptest.NewRequest(http.MethodGet, "http://romyseb.ch/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "HTTPS")
	require.True(t, IsSecureRequest(proxied))

	direct := httptest.NewRequest(http.MethodGet, "https://romyseb.ch/", nil)
	require.True(t, IsSecureRequest(direct))
}
