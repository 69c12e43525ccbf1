package database

import (
	"net/url"
	"path/filepath"
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		dsn, err := buildPostgresDSN(Config{User: "wedding", Name: "wedding"})
		require.NoError(t, err)
		require.Equal(t, "postgres://wedding@localhost:5432/wedding?application_name=wedding&sslmode=disable", dsn)
	})

	t.Run("options override defaults and credentials are escaped", func(t *testing.T) {
		dsn, err := buildPostgresDSN(Config{
			User:     "romina",
			Password: "p@ss/word",
			Name:     "guests",
			Host:     "db.romyseb.ch",
			Port:     6543,
			Options:  map[string]string{"sslmode": "require", "search_path": "public"},
		})
		require.NoError(t, err)

		parsed, err := url.Parse(dsn)
		require.NoError(t, err)
		require.Equal(t, "db.romyseb.ch:6543", parsed.Host)
		require.Equal(t, "/guests", parsed.Path)
		password, ok := parsed.User.Password()
		require.True(t, ok)
		require.Equal(t, "p@ss/word", password)
		require.Equal(t, "require", parsed.Query().Get("sslmode"))
		require.Equal(t, "public", parsed.Query().Get("search_path"))
	})

	t.Run("explicit dsn passes through", func(t *testing.T) {
		raw := "host=localhost user=wedding dbname=wedding sslmode=disable"
		dsn, err := buildPostgresDSN(Config{DSN: raw})
		require.NoError(t, err)
		require.Equal(t, raw, dsn)
	})

	t.Run("requires user and name", func(t *testing.T) {
		_, err := buildPostgresDSN(Config{})
		require.Error(t, err)
	})
}

func TestBuildMySQLDSN(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		dsn, err := buildMySQLDSN(Config{User: "wedding", Name: "wedding"})
		require.NoError(t, err)

		parsed, err := mysqldriver.ParseDSN(dsn)
		require.NoError(t, err)
		require.Equal(t, "wedding", parsed.User)
		require.Equal(t, "127.0.0.1:3306", parsed.Addr)
		require.Equal(t, "wedding", parsed.DBName)
		require.True(t, parsed.ParseTime)
		require.Equal(t, time.UTC, parsed.Loc)
		require.Contains(t, dsn, "charset=utf8mb4")
	})

	t.Run("custom host and options", func(t *testing.T) {
		dsn, err := buildMySQLDSN(Config{
			User:     "sebas",
			Password: "secret",
			Name:     "guests",
			Host:     "db.romyseb.ch",
			Port:     3307,
			Options:  map[string]string{"timeout": "5s"},
		})
		require.NoError(t, err)
		require.Contains(t, dsn, "sebas:secret@tcp(db.romyseb.ch:3307)/guests?")

		parsed, err := mysqldriver.ParseDSN(dsn)
		require.NoError(t, err)
		require.Equal(t, 5*time.Second, parsed.Timeout)
	})

	t.Run("rejects malformed dsn", func(t *testing.T) {
		_, err := buildMySQLDSN(Config{DSN: "not a dsn"})
		require.Error(t, err)
	})

	t.Run("requires user and name", func(t *testing.T) {
		_, err := buildMySQLDSN(Config{Host: "localhost"})
		require.Error(t, err)
	})
}

func TestSQLiteDSN(t *testing.T) {
	t.Run("memory by default", func(t *testing.T) {
		dsn, fileBacked, err := sqliteDSN(Config{})
		require.NoError(t, err)
		require.False(t, fileBacked)
		require.Contains(t, dsn, "memory")
	})

	t.Run("file path creates directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested")
		path := filepath.Join(dir, "wedding.sqlite")
		dsn, fileBacked, err := sqliteDSN(Config{Path: path})
		require.NoError(t, err)
		require.True(t, fileBacked)
		require.Contains(t, dsn, "_busy_timeout=5000")
		require.DirExists(t, dir)
	})
}
