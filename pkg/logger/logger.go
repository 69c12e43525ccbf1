package logger

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// Options controls how the global logger is built.
type Options struct {
	Level string
	// Development switches to the human readable console encoder.
	Development bool
	// Service is attached to every entry when set.
	Service string
}

// Init configures the global logger at level.
func Init(level string) error {
	return InitWithOptions(Options{Level: level})
}

// InitWithOptions builds and installs the global logger. Unknown levels fall back to info.
func InitWithOptions(opts Options) error {
	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(strings.TrimSpace(opts.Level)); err == nil {
		level = parsed
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	if opts.Service != "" {
		cfg.InitialFields = map[string]interface{}{"service": opts.Service}
	}

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	Replace(built)
	return nil
}

// Replace installs l as the global logger. Nil installs a no-op logger.
func Replace(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	global.Store(l)
}

// Logger returns the global logger.
func Logger() *zap.Logger {
	return global.Load()
}

// Sync flushes buffered entries.
func Sync() error {
	return Logger().Sync()
}

// WithModule returns a child logger tagged with module.
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}

// MaskEmail keeps the first character of the local part so log lines stay useful
// without recording full guest addresses.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// MaskToken keeps the last six characters of an access token, enough to correlate log
// lines without making the link usable.
func MaskToken(token string) string {
	const visible = 6
	if len(token) <= visible*2 {
		return "***"
	}
	return "***" + token[len(token)-visible:]
}
