package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/romyseb/wedding/internal/services"
	appErrors "github.com/romyseb/wedding/pkg/errors"
	"github.com/romyseb/wedding/pkg/logger"
	"github.com/romyseb/wedding/pkg/response"
	appValidator "github.com/romyseb/wedding/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		field := ""
		var failures appValidator.ValidationErrors
		if errors.As(err, &failures) && len(failures) > 0 {
			field = failures[0].Field
		}
		response.ErrorWithField(c, appErrors.NewValidation(formatValidationError(err)), field)
		return false
	}

	return true
}

func formatValidationError(err error) string {
	var failures appValidator.ValidationErrors
	if !errors.As(err, &failures) || len(failures) == 0 {
		return "invalid request payload"
	}

	messages := make([]string, 0, len(failures))
	for _, failure := range failures {
		switch failure.Tag {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", failure.Field))
		case "notblank":
			messages = append(messages, fmt.Sprintf("%s must not be blank", failure.Field))
		case "emailshape":
			messages = append(messages, fmt.Sprintf("%s must be an email address", failure.Field))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", failure.Field, failure.Param))
		default:
			if failure.Param != "" {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s=%s", failure.Field, failure.Tag, failure.Param))
			} else {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", failure.Field, failure.Tag))
			}
		}
	}
	return strings.Join(messages, "; ")
}

// writeServiceError maps service errors onto API error codes. Unexpected errors are
// logged and reported without internal detail.
func writeServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.ErrorWithField(c, appErrors.NewValidation(validationErr.Error()), validationErr.Field)
	case errors.Is(err, services.ErrInvitationNotFound):
		response.Error(c, appErrors.ErrNotFound.WithMessage("No invitation matches this request"))
	case errors.Is(err, services.ErrTokenInvalid):
		response.Error(c, appErrors.ErrTokenInvalid)
	case errors.Is(err, services.ErrDuplicateSong):
		response.Error(c, appErrors.ErrConflict.WithMessage("This suggestion already exists"))
	case errors.Is(err, services.ErrDelivery):
		response.Error(c, appErrors.ErrDeliveryFailed)
	default:
		logger.WithModule("http").Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		response.Error(c, appErrors.ErrInternalServer)
	}
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
