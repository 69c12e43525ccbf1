package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/romyseb/wedding/pkg/response"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestRecoveryHidesPanicValue(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Recovery())
	r.GET("/:locale/invitation", func(c *gin.Context) {
		panic("guest token abc.def leaked")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/es/invitation", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	payload := decodeEnvelope(t, w)
	require.False(t, payload.Success)
	require.Equal(t, "INTERNAL_SERVER_ERROR", payload.Error.Code)
	require.NotContains(t, w.Body.String(), "abc.def")
}

func TestRecoveryKeepsPartialResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Recovery())
	r.GET("/qr", func(c *gin.Context) {
		c.Data(http.StatusOK, "image/png", []byte{0x89, 'P', 'N', 'G'})
		panic("encoder failed after write")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/qr", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestNotFoundHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.NoRoute(NotFoundHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/missing", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	payload := decodeEnvelope(t, w)
	require.Equal(t, "NOT_FOUND", payload.Error.Code)
	require.Equal(t, "route POST /api/missing not found", payload.Error.Message)
}
