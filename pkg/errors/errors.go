package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error that can be rendered to guests. Internal never leaves the server.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches any AppError with the same code, so customised copies still compare equal
// to the shared values below.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if e == nil || !errors.As(target, &other) || other == nil {
		return false
	}
	return e.Code == other.Code
}

// WithInternal returns a copy carrying err for logs.
func (e *AppError) WithInternal(err error) *AppError {
	return e.clone(func(c *AppError) { c.Internal = err })
}

// WithMessage returns a copy with a different client message.
func (e *AppError) WithMessage(message string) *AppError {
	return e.clone(func(c *AppError) { c.Message = message })
}

// WithField returns a copy pointing at the offending input field.
func (e *AppError) WithField(field string) *AppError {
	return e.clone(func(c *AppError) { c.Field = field })
}

func (e *AppError) clone(edit func(*AppError)) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	edit(&cpy)
	return &cpy
}

func define(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: status}
}

// Errors the guest API can return.
var (
	ErrBadRequest     = define(http.StatusBadRequest, "BAD_REQUEST", "Invalid request")
	ErrValidation     = define(http.StatusBadRequest, "VALIDATION_FAILED", "Invalid submission")
	ErrUnauthorized   = define(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	ErrTokenInvalid   = define(http.StatusUnauthorized, "TOKEN_INVALID", "Access link is invalid or has expired")
	ErrNotFound       = define(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrConflict       = define(http.StatusConflict, "CONFLICT", "Resource already exists")
	ErrRateLimit      = define(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests, please slow down")
	ErrInternalServer = define(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrDeliveryFailed = define(http.StatusBadGateway, "DELIVERY_FAILED", "The email could not be sent")
)

// FromError returns err as an AppError. Anything else becomes ErrInternalServer with
// err attached.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest reports a payload that could not be read.
func NewBadRequest(message string) *AppError {
	return ErrBadRequest.WithMessage(message)
}

// NewValidation reports a rejected submission with the first violation found.
func NewValidation(message string) *AppError {
	return ErrValidation.WithMessage(message)
}
