package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/romyseb/wedding/internal/database"
)

// TestDBOption adjusts MustOpenTestDB.
type TestDBOption func(*testDB)

type testDB struct {
	migrate bool
	records []interface{}
}

// WithAutoMigrate applies the wedding schema after opening.
func WithAutoMigrate() TestDBOption {
	return func(cfg *testDB) { cfg.migrate = true }
}

// WithRecords inserts records, in order, once the schema exists. Implies WithAutoMigrate.
func WithRecords(records ...interface{}) TestDBOption {
	return func(cfg *testDB) {
		cfg.migrate = true
		cfg.records = append(cfg.records, records...)
	}
}

// MustOpenTestDB opens an in-memory SQLite database private to t. Each call gets its own
// named shared-cache database so parallel tests never see each other's rows.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	var cfg testDB
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := database.Open(database.Config{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:wedding-%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString()),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if cfg.migrate {
		require.NoError(t, database.Prepare(db))
	}
	for _, record := range cfg.records {
		require.NoError(t, db.Create(record).Error, "seed %T", record)
	}
	return db
}
