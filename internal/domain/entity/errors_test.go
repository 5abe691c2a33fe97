package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "code format",
			field:    "code",
			message:  "airport code \"hn\" must be three upper-case letters",
			expected: "validation error on field 'code': airport code \"hn\" must be three upper-case letters",
		},
		{
			name:     "empty message",
			field:    "time",
			message:  "",
			expected: "validation error on field 'time': ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &ValidationError{Field: tt.field, Message: tt.message}
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestValidationError_IsValidationFailed(t *testing.T) {
	var err error = &ValidationError{Field: "code", Message: "required"}

	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.False(t, errors.Is(err, ErrUnknownAirport))

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "code", ve.Field)
}

func TestSentinelErrors_Distinct(t *testing.T) {
	assert.NotEqual(t, ErrInvalidRegistry, ErrUnknownAirport)
	assert.NotEqual(t, ErrUnknownAirport, ErrValidationFailed)
	assert.NotEqual(t, ErrInvalidRegistry, ErrValidationFailed)
}
