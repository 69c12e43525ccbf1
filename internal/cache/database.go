package cache

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/romyseb/wedding/internal/models"
)

// DatabaseStore implements Store using the primary SQL database.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseStore constructs a database-backed Store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, now: time.Now}
}

// WithClock overrides the time source, used by tests.
func (s *DatabaseStore) WithClock(now func() time.Time) *DatabaseStore {
	if s != nil && now != nil {
		s.now = now
	}
	return s
}

// IncrementWithTTL increments the counter for key inside a fixed window. The window starts
// with the first hit and the counter resets once it has elapsed.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s == nil {
		return 0, 0, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if window <= 0 {
		window = time.Minute
	}

	now := s.now()

	var (
		count  int64
		expiry time.Time
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.CacheEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.CacheEntry{Key: key}).
			Take(&entry).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry = models.CacheEntry{Key: key, ExpiresAt: now.Add(window)}
			entry.SetCount(1)
			count, expiry = 1, entry.ExpiresAt
			return tx.Create(&entry).Error
		case err != nil:
			return err
		}

		if entry.Expired(now) {
			entry.SetCount(1)
			entry.ExpiresAt = now.Add(window)
		} else {
			entry.SetCount(entry.Count() + 1)
		}
		count, expiry = entry.Count(), entry.ExpiresAt
		return tx.Save(&entry).Error
	})
	if err != nil {
		return 0, 0, err
	}

	return count, expiry.Sub(now), nil
}

// PurgeExpired deletes entries whose window has elapsed.
func (s *DatabaseStore) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}
