package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqliteBusyTimeoutMS is how long a connection waits on a locked database file.
const sqliteBusyTimeoutMS = 5000

func openSQLite(cfg Config) (*gorm.DB, error) {
	dsn, fileBacked, err := sqliteDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if fileBacked {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	return db, nil
}

// sqliteDSN resolves the connection string and reports whether it points at a file.
func sqliteDSN(cfg Config) (string, bool, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn, !strings.Contains(dsn, "mode=memory") && !strings.Contains(dsn, ":memory:"), nil
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" || strings.EqualFold(path, ":memory:") {
		return "file::memory:?cache=shared&_foreign_keys=1", false, nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", false, fmt.Errorf("sqlite: create data directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=%d", filepath.ToSlash(path), sqliteBusyTimeoutMS)
	return dsn, true, nil
}
