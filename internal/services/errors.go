package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence wraps storage layer failures.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvitationNotFound indicates no invitation or member matches the lookup.
	ErrInvitationNotFound = errors.New("invitation not found")
	// ErrDuplicateToken signals that a token is already held by another member.
	ErrDuplicateToken = errors.New("token already assigned")
	// ErrTokenInvalid is returned when a guest token fails verification or no longer exists.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrDelivery reports that an access link email could not be sent.
	ErrDelivery = errors.New("email delivery failed")
	// ErrDuplicateSong indicates the same person already suggested the song.
	ErrDuplicateSong = errors.New("song already suggested")
)

// ValidationError describes the first invalid field of a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is allows errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") || strings.Contains(lower, "duplicate")
}
