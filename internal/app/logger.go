package app

import (
	"strings"

	"github.com/romyseb/wedding/pkg/logger"
)

// ConfigureLogging initialises the global logger from server settings, defaulting to info.
func ConfigureLogging(cfg ServerConfig) error {
	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}
	return logger.InitWithOptions(logger.Options{
		Level:       level,
		Development: cfg.Development,
		Service:     "wedding",
	})
}
