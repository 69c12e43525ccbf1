package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the wedding site backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	App         SiteConfig        `mapstructure:"app"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Email       EmailConfig       `mapstructure:"email"`
	Invites     InvitesConfig     `mapstructure:"invites"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	Development     bool          `mapstructure:"development"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SiteConfig holds public facing site settings.
type SiteConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	DefaultLocale string `mapstructure:"default_locale"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AuthConfig captures guest token settings.
type AuthConfig struct {
	Token TokenSettings `mapstructure:"token"`
}

// TokenSettings configures guest access and session tokens.
type TokenSettings struct {
	Secret          string        `mapstructure:"secret"`
	Issuer          string        `mapstructure:"issuer"`
	Audience        string        `mapstructure:"audience"`
	SessionAudience string        `mapstructure:"session_audience"`
	TTL             time.Duration `mapstructure:"ttl"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	ClockSkew       time.Duration `mapstructure:"clock_skew"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	From string     `mapstructure:"from"`
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// InvitesConfig tunes the bulk invitation workflow.
type InvitesConfig struct {
	DispatchConcurrency int `mapstructure:"dispatch_concurrency"`
}

// RateLimitConfig throttles the public invitation endpoints. Store selects where the
// counters live: "database" shares them across instances, "memory" keeps them local.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Store    string        `mapstructure:"store"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// MaintenanceConfig schedules periodic housekeeping.
type MaintenanceConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	StatsSchedule      string `mapstructure:"stats_schedule"`
	CachePurgeSchedule string `mapstructure:"cache_purge_schedule"`
}

// ConfigurationError reports a missing or invalid required setting. It is fatal at startup.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Message)
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("WEDDING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// Validate checks settings without which the process must not start.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.Token.Secret) == "" {
		return &ConfigurationError{Key: "auth.token.secret", Message: "guest token secret is required (WEDDING_AUTH_TOKEN_SECRET)"}
	}
	if strings.TrimSpace(c.App.BaseURL) == "" {
		return &ConfigurationError{Key: "app.base_url", Message: "base url must not be empty"}
	}
	switch strings.ToLower(strings.TrimSpace(c.RateLimit.Store)) {
	case "", "database", "memory":
	default:
		return &ConfigurationError{Key: "ratelimit.store", Message: "must be database or memory"}
	}
	if c.Invites.DispatchConcurrency < 0 {
		return &ConfigurationError{Key: "invites.dispatch_concurrency", Message: "must not be negative"}
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can resolve WEDDING_* overrides.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.development", false)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("app.base_url", "https://romyseb.ch")
	v.SetDefault("app.default_locale", "fr")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/wedding.sqlite")
	v.SetDefault("database.dsn", "")
	for _, driver := range []string{"postgres", "mysql"} {
		v.SetDefault("database."+driver+".host", "")
		v.SetDefault("database."+driver+".port", 0)
		v.SetDefault("database."+driver+".database", "")
		v.SetDefault("database."+driver+".username", "")
		v.SetDefault("database."+driver+".password", "")
	}

	v.SetDefault("auth.token.secret", "")
	v.SetDefault("auth.token.issuer", "romyseb.ch")
	v.SetDefault("auth.token.audience", "guest")
	v.SetDefault("auth.token.session_audience", "guest-session")
	v.SetDefault("auth.token.ttl", "8760h") // 525600 minutes
	v.SetDefault("auth.token.session_ttl", "8760h")
	v.SetDefault("auth.token.clock_skew", "60s")

	v.SetDefault("email.from", "Romina & Sebas <contact@romyseb.ch>")
	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.use_tls", true)
	v.SetDefault("email.smtp.timeout", "10s")

	v.SetDefault("invites.dispatch_concurrency", 4)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.store", "database")
	v.SetDefault("ratelimit.requests", 20)
	v.SetDefault("ratelimit.window", "1m")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.stats_schedule", "@every 5m")
	v.SetDefault("maintenance.cache_purge_schedule", "@every 1h")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
