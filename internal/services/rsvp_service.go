package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/romyseb/wedding/internal/models"
	"github.com/romyseb/wedding/pkg/validator"
)

// RSVPInput is a public RSVP submission.
type RSVPInput struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// RSVPService stores answers from the public RSVP form.
type RSVPService struct {
	db *gorm.DB
}

// NewRSVPService constructs an RSVPService.
func NewRSVPService(db *gorm.DB) (*RSVPService, error) {
	if db == nil {
		return nil, errors.New("rsvp service: db is required")
	}
	return &RSVPService{db: db}, nil
}

// Submit records an answer. Any status other than "yes" is stored as "no".
func (s *RSVPService) Submit(ctx context.Context, input RSVPInput) (*models.RSVP, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != "" && !validator.IsEmailShape(email) {
		return nil, invalid("email", "is not a valid email address")
	}

	status := models.RSVPNo
	if strings.EqualFold(strings.TrimSpace(input.Status), string(models.RSVPYes)) {
		status = models.RSVPYes
	}

	rsvp := &models.RSVP{
		Name:    name,
		Email:   optional(email),
		Status:  status,
		Message: optional(input.Message),
	}
	if err := s.db.WithContext(ctx).Create(rsvp).Error; err != nil {
		return nil, persistenceError("create rsvp", err)
	}
	return rsvp, nil
}
