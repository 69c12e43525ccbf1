package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const postgresApplicationName = "wedding"

func openPostgres(cfg Config) (*gorm.DB, error) {
	dsn, err := buildPostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return db, nil
}

// buildPostgresDSN renders a postgres:// URL so credentials are escaped, then lets pgx
// parse it to reject malformed settings before the first connection attempt.
func buildPostgresDSN(cfg Config) (string, error) {
	dsn := cfg.DSN
	if dsn == "" {
		if cfg.User == "" || cfg.Name == "" {
			return "", errors.New("postgres configuration requires user and database name")
		}

		host := cfg.Host
		if host == "" {
			host = "localhost"
		}
		port := cfg.Port
		if port == 0 {
			port = 5432
		}

		query := url.Values{}
		query.Set("sslmode", "disable")
		query.Set("application_name", postgresApplicationName)
		for key, value := range cfg.Options {
			query.Set(key, value)
		}

		target := url.URL{
			Scheme:   "postgres",
			Host:     net.JoinHostPort(host, strconv.Itoa(port)),
			Path:     "/" + cfg.Name,
			RawQuery: query.Encode(),
		}
		if cfg.Password != "" {
			target.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			target.User = url.User(cfg.User)
		}
		dsn = target.String()
	}

	if _, err := pgx.ParseConfig(dsn); err != nil {
		return "", fmt.Errorf("postgres: invalid connection settings: %w", err)
	}
	return dsn, nil
}
