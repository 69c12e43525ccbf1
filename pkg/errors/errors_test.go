package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithInternalKeepsCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := ErrDeliveryFailed.WithInternal(cause)

	require.Equal(t, "The email could not be sent: connection refused", err.Error())
	require.ErrorIs(t, err, cause)
	require.Nil(t, ErrDeliveryFailed.Internal, "shared value must stay untouched")
}

func TestCopiesMatchTheirSharedValue(t *testing.T) {
	err := ErrNotFound.WithMessage("No invitation matches this request").WithField("email")

	require.NotSame(t, ErrNotFound, err)
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrConflict)
	require.Equal(t, "email", err.Field)
	require.Empty(t, ErrNotFound.Field)
}

func TestFromError(t *testing.T) {
	require.Same(t, ErrTokenInvalid, FromError(ErrTokenInvalid))
	require.Same(t, ErrConflict, FromError(fmt.Errorf("create song: %w", ErrConflict)))

	out := FromError(stdErrors.New("raw"))
	require.Equal(t, ErrInternalServer.Code, out.Code)
	require.Error(t, out.Internal)
	require.Nil(t, FromError(nil))
}

func TestNewValidation(t *testing.T) {
	err := NewValidation("contactEmail is not a valid email address")
	require.Equal(t, ErrValidation.Code, err.Code)
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
	require.NotEqual(t, ErrValidation.Message, err.Message)
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("invalid JSON payload")
	require.Equal(t, ErrBadRequest.Code, err.Code)
	require.Equal(t, "invalid JSON payload", err.Message)
}
