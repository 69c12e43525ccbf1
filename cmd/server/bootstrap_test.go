package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/romyseb/wedding/internal/app"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()
	return &app.Config{
		App: app.SiteConfig{BaseURL: "https://romyseb.test", DefaultLocale: "fr"},
		Database: app.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "wedding.sqlite"),
		},
		Auth:        app.AuthConfig{Token: app.TokenSettings{Secret: "bootstrap-secret"}},
		RateLimit:   app.RateLimitConfig{Enabled: true, Store: "memory", Requests: 10, Window: time.Minute},
		Maintenance: app.MaintenanceConfig{Enabled: true},
		Monitoring:  app.MonitoringConfig{Prometheus: app.PrometheusConfig{Enabled: true}},
	}
}

func TestBootstrapRuntimeServesHealth(t *testing.T) {
	stack, err := bootstrapRuntime(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.NotNil(t, stack.Scheduler)
	require.NotNil(t, stack.Health)

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBootstrapRuntimeWithoutMaintenance(t *testing.T) {
	cfg := testConfig(t)
	cfg.Maintenance.Enabled = false
	cfg.RateLimit.Store = "database"

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })
	require.Nil(t, stack.Scheduler)
}

func TestBootstrapRuntimeRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "oracle"

	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "open database")
}

func TestConvertDatabaseConfig(t *testing.T) {
	cfg := &app.Config{Database: app.DatabaseConfig{
		Driver: " PostgreSQL ",
		Postgres: app.DBAuthConfig{
			Host:     "db.internal",
			Port:     5432,
			Database: "wedding",
			Username: "romyseb",
			Password: " secret ",
		},
	}}

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, 5432, dbCfg.Port)
	require.Equal(t, "wedding", dbCfg.Name)
	require.Equal(t, "romyseb", dbCfg.User)
	require.Equal(t, "secret", dbCfg.Password)

	require.Equal(t, "sqlite", convertDatabaseConfig(&app.Config{}).Driver)
}

func TestRunFailsFastWithoutSecret(t *testing.T) {
	t.Setenv("WEDDING_AUTH_TOKEN_SECRET", "")

	err := run(context.Background(), []string{"-config", t.TempDir()})
	var cfgErr *app.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "auth.token.secret", cfgErr.Key)
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "does not exist")
}

func TestServeStopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, server, time.Second, zap.NewNop()) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestServeReportsListenFailure(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}

	err := serve(context.Background(), server, time.Second, zap.NewNop())
	require.ErrorContains(t, err, "listen")
}
