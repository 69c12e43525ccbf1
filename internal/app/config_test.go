package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/romyseb/wedding/internal/auth"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig("testdata")
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)

	require.Equal(t, "https://staging.romyseb.ch/", cfg.App.BaseURL)
	require.Equal(t, "es", cfg.App.DefaultLocale)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.Equal(t, "file-secret", cfg.Auth.Token.Secret)
	require.Equal(t, 720*time.Hour, cfg.Auth.Token.TTL)
	require.Equal(t, 30*time.Second, cfg.Auth.Token.ClockSkew)
	require.Equal(t, "guest", cfg.Auth.Token.Audience)

	require.Equal(t, "Test <test@example.com>", cfg.Email.From)
	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.False(t, cfg.Email.SMTP.UseTLS)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)

	require.Equal(t, 2, cfg.Invites.DispatchConcurrency)
	require.True(t, cfg.RateLimit.Enabled)
	require.Equal(t, 5, cfg.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.RateLimit.Window)

	require.Equal(t, "@every 1m", cfg.Maintenance.StatsSchedule)
	require.Equal(t, "@every 1h", cfg.Maintenance.CachePurgeSchedule)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "https://romyseb.ch", cfg.App.BaseURL)
	require.Equal(t, "fr", cfg.App.DefaultLocale)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 8760*time.Hour, cfg.Auth.Token.TTL)
	require.Equal(t, time.Minute, cfg.Auth.Token.ClockSkew)
	require.Equal(t, "Romina & Sebas <contact@romyseb.ch>", cfg.Email.From)
	require.Equal(t, 4, cfg.Invites.DispatchConcurrency)
	require.Empty(t, cfg.Auth.Token.Secret)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("WEDDING_AUTH_TOKEN_SECRET", "env-secret")
	t.Setenv("WEDDING_APP_BASE_URL", "http://localhost:3000")
	t.Setenv("WEDDING_INVITES_DISPATCH_CONCURRENCY", "8")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "env-secret", cfg.Auth.Token.Secret)
	require.Equal(t, "http://localhost:3000", cfg.App.BaseURL)
	require.Equal(t, 8, cfg.Invites.DispatchConcurrency)
}

func TestValidateRequiresSecret(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, "auth.token.secret", cfgErr.Key)
}

func TestTokenCodecConfigAdapter(t *testing.T) {
	cfg := AuthConfig{Token: TokenSettings{
		Secret:    "secret",
		Issuer:    "romyseb.ch",
		Audience:  "guest",
		TTL:       time.Hour,
		ClockSkew: time.Minute,
	}}

	require.Equal(t, auth.TokenConfig{
		Secret:    "secret",
		Issuer:    "romyseb.ch",
		Audience:  "guest",
		TTL:       time.Hour,
		ClockSkew: time.Minute,
	}, cfg.TokenCodecConfig())

	_, err := auth.NewTokenCodec(AuthConfig{}.TokenCodecConfig())
	require.ErrorIs(t, err, auth.ErrMissingSecret)
}

func TestEmailConfigAdapter(t *testing.T) {
	cfg := EmailConfig{
		From: "no-reply@example.com",
		SMTP: SMTPConfig{
			Enabled:  true,
			Host:     "smtp.example.com",
			Port:     2525,
			Username: "user",
			Password: "pass",
			UseTLS:   true,
			Timeout:  10 * time.Second,
		},
	}

	settings := cfg.SMTPSettings()
	require.True(t, settings.Enabled)
	require.Equal(t, "smtp.example.com", settings.Host)
	require.Equal(t, 2525, settings.Port)
	require.Equal(t, "user", settings.Username)
	require.Equal(t, "pass", settings.Password)
	require.Equal(t, "no-reply@example.com", settings.From)
	require.True(t, settings.UseTLS)
	require.Equal(t, 10*time.Second, settings.Timeout)

	require.Equal(t, defaultFromAddress, EmailConfig{}.FromAddress())
}
