package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/romyseb/wedding/internal/models"
)

const (
	maxSongNameLength   = 150
	maxArtistLength     = 150
	maxPersonNameLength = 100
	defaultSongLimit    = 200
)

// SongInput is a playlist suggestion.
type SongInput struct {
	SongName   string `json:"songName"`
	Artist     string `json:"artist"`
	PersonName string `json:"personName"`
}

// SongService manages playlist suggestions.
type SongService struct {
	db *gorm.DB
}

// NewSongService constructs a SongService.
func NewSongService(db *gorm.DB) (*SongService, error) {
	if db == nil {
		return nil, errors.New("song service: db is required")
	}
	return &SongService{db: db}, nil
}

// List returns suggestions, newest first. A non-positive limit uses the default.
func (s *SongService) List(ctx context.Context, limit int) ([]models.SongSuggestion, error) {
	if limit <= 0 {
		limit = defaultSongLimit
	}

	var songs []models.SongSuggestion
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&songs).Error
	if err != nil {
		return nil, persistenceError("list songs", err)
	}
	return songs, nil
}

// Create stores a suggestion. The same person suggesting the same song twice yields ErrDuplicateSong.
func (s *SongService) Create(ctx context.Context, input SongInput) (*models.SongSuggestion, error) {
	song := &models.SongSuggestion{
		SongName:   strings.TrimSpace(input.SongName),
		Artist:     strings.TrimSpace(input.Artist),
		PersonName: strings.TrimSpace(input.PersonName),
	}

	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"songName", song.SongName, maxSongNameLength},
		{"artist", song.Artist, maxArtistLength},
		{"personName", song.PersonName, maxPersonNameLength},
	}
	for _, field := range fields {
		if field.value == "" {
			return nil, invalid(field.name, "is required")
		}
		if utf8.RuneCountInString(field.value) > field.max {
			return nil, invalid(field.name, "must be at most %d characters", field.max)
		}
	}

	if err := s.db.WithContext(ctx).Create(song).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: %s by %s", ErrDuplicateSong, song.SongName, song.Artist)
		}
		return nil, persistenceError("create song", err)
	}
	return song, nil
}
