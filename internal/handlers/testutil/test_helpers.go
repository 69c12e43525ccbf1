package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/romyseb/wedding/internal/api"
	"github.com/romyseb/wedding/internal/app"
	"github.com/romyseb/wedding/internal/auth"
	"github.com/romyseb/wedding/internal/cache"
	sharedtestutil "github.com/romyseb/wedding/internal/database/testutil"
	"github.com/romyseb/wedding/internal/emails"
	"github.com/romyseb/wedding/internal/locale"
	"github.com/romyseb/wedding/internal/middleware"
	"github.com/romyseb/wedding/internal/services"
	"github.com/romyseb/wedding/pkg/mail"
	"github.com/romyseb/wedding/pkg/response"
	"github.com/romyseb/wedding/web"
)

// BaseURL is the site origin used in access links issued by the test environment.
const BaseURL = "https://romyseb.test"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	Codec  *auth.TokenCodec
	Mailer *RecordingMailer
	Store  *services.GormInvitationStore
	Config *app.Config
}

// EnvOption adjusts the configuration before the router is built.
type EnvOption func(*app.Config)

// WithRateLimit enables the public API rate limit.
func WithRateLimit(requests int, window time.Duration) EnvOption {
	return func(cfg *app.Config) {
		cfg.RateLimit = app.RateLimitConfig{Enabled: true, Requests: requests, Window: window}
	}
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	cfg := &app.Config{
		App: app.SiteConfig{BaseURL: BaseURL, DefaultLocale: locale.French},
		Auth: app.AuthConfig{Token: app.TokenSettings{
			Secret: "test-suite-secret",
			Issuer: "test-suite",
		}},
		Email: app.EmailConfig{From: "Romina & Sebas <contact@romyseb.test>"},
		Monitoring: app.MonitoringConfig{Prometheus: app.PrometheusConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		}},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret: cfg.Auth.Token.Secret,
		Issuer: cfg.Auth.Token.Issuer,
	})
	require.NoError(t, err)

	store, err := services.NewInvitationStore(db)
	require.NoError(t, err)

	negotiator := locale.NewNegotiator(cfg.App.DefaultLocale)
	files, err := web.EmailTemplates()
	require.NoError(t, err)
	renderer, err := emails.NewRenderer(files, negotiator)
	require.NoError(t, err)

	mailer := &RecordingMailer{}
	invites, err := services.NewInviteService(store, codec, mailer, renderer,
		services.WithInviteBaseURL(cfg.App.BaseURL),
		services.WithInviteSender(cfg.Email.From),
	)
	require.NoError(t, err)

	access, err := services.NewAccessService(store, codec, negotiator)
	require.NoError(t, err)
	rsvps, err := services.NewRSVPService(db)
	require.NoError(t, err)
	songs, err := services.NewSongService(db)
	require.NoError(t, err)

	router, err := api.NewRouter(api.Dependencies{
		Config:     cfg,
		Access:     access,
		Invites:    invites,
		RSVPs:      rsvps,
		Songs:      songs,
		Negotiator: negotiator,
		RateStore:  middleware.NewRateStore(cache.NewMemoryStore()),
	})
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		Codec:  codec,
		Mailer: mailer,
		Store:  store,
		Config: cfg,
	}
}

// RecordingMailer keeps every sent message and fails for configured recipients.
type RecordingMailer struct {
	mu       sync.Mutex
	sent     []mail.Message
	failures map[string]error
}

func (m *RecordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, to := range msg.To {
		if err := m.failures[to]; err != nil {
			return err
		}
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Messages returns a copy of the delivered messages.
func (m *RecordingMailer) Messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

// FailFor makes every message addressed to address fail with err.
func (m *RecordingMailer) FailFor(address string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures == nil {
		m.failures = make(map[string]error)
	}
	m.failures[address] = err
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, encoding body as JSON and
// sending credential as the guest cookie when set.
func (e *Env) Request(method, path string, body any, credential string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.AddCookie(&http.Cookie{Name: middleware.GuestCookieName, Value: credential})
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// GuestCookie returns the guest cookie set by a response, or nil.
func GuestCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.GuestCookieName {
			return cookie
		}
	}
	return nil
}

// Household returns a three member invitation request with two addressable members.
func Household() services.BulkInviteRequest {
	adult, child := 34.0, 6.0
	return services.BulkInviteRequest{
		Group: services.GroupInput{
			ContactName:       "Ana Ruiz",
			ContactEmail:      "ana@example.com",
			PreferredLanguage: "es",
		},
		Guests: []services.GuestInput{
			{Role: "primary", FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com", Age: &adult},
			{FirstName: "Leo", LastName: "Ruiz", Age: &child, IsChild: true},
			{FirstName: "Marta", LastName: "Gil", TargetEmail: "marta@example.com", Age: &adult},
		},
	}
}

// IssueHousehold creates the Household invitation through the API and returns its result.
func (e *Env) IssueHousehold() services.BulkInviteResult {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/invite/request-bulk", Household(), "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result services.BulkInviteResult
	DecodeInto(e.T, resp.Data, &result)
	require.NotEmpty(e.T, result.InvitationID)
	return result
}

// MemberToken returns the current access token of the member addressed by email.
func (e *Env) MemberToken(email string) string {
	e.T.Helper()

	record, err := e.Store.FindByEmail(context.Background(), email)
	require.NoError(e.T, err)
	require.NotNil(e.T, record, "no member for %s", email)
	return record.Member.Token
}
