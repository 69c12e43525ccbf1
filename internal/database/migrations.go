package database

import (
	"gorm.io/gorm"

	"github.com/romyseb/wedding/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GroupInvitation{},
		&models.InvitationMember{},
		&models.RSVP{},
		&models.SongSuggestion{},
		&models.CacheEntry{},
	)
}
