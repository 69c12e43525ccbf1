package models

import (
	"strconv"
	"time"
)

// CacheEntry is a rate limit counter. Value holds the decimal hit count of the window
// that ends at ExpiresAt.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     []byte
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Count parses Value. A corrupt value counts as zero.
func (e *CacheEntry) Count() int64 {
	n, err := strconv.ParseInt(string(e.Value), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// SetCount stores n in Value.
func (e *CacheEntry) SetCount(n int64) {
	e.Value = []byte(strconv.FormatInt(n, 10))
}

// Expired reports whether the window has elapsed at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
