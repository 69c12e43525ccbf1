package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type songPayload struct {
	SongName   string `json:"songName" validate:"required,notblank,max=150"`
	PersonName string `json:"personName" validate:"required,max=100"`
	Email      string `json:"email" validate:"omitempty,emailshape"`
	Internal   string `json:"-" validate:"max=3"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		payload := songPayload{SongName: "La Bamba", PersonName: "Leo", Email: "leo@example.com"}
		require.NoError(t, ValidateStruct(payload))
	})

	t.Run("failures use json names", func(t *testing.T) {
		err := ValidateStruct(songPayload{SongName: "   ", Email: "not an email", Internal: "toolong"})

		var failures ValidationErrors
		require.ErrorAs(t, err, &failures)

		tags := map[string]string{}
		for _, failure := range failures {
			tags[failure.Field] = failure.Tag
		}
		require.Equal(t, map[string]string{
			"songName":   "notblank",
			"personName": "required",
			"email":      "emailshape",
			"Internal":   "max",
		}, tags)
		require.Contains(t, err.Error(), "Internal failed on max=3")
	})
}

func TestIsEmailShape(t *testing.T) {
	cases := map[string]bool{
		"ana@example.com":     true,
		"ana.ruiz@mail.co.uk": true,
		"ana@example":         false,
		"ana example@x.com":   false,
		"@example.com":        false,
		"":                    false,
	}
	for input, want := range cases {
		require.Equal(t, want, IsEmailShape(input), input)
	}
}

func TestRegisterValidation(t *testing.T) {
	require.NoError(t, RegisterValidation("weddingyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() >= 2025
	}))

	type payload struct {
		Year int `json:"year" validate:"weddingyear"`
	}
	require.Error(t, ValidateStruct(payload{Year: 1999}))
	require.NoError(t, ValidateStruct(payload{Year: 2025}))
}

func TestEmptyValidationErrorsMessage(t *testing.T) {
	require.Equal(t, "validation failed", ValidationErrors(nil).Error())
}
