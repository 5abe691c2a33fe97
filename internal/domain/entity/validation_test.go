package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAirportCode(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"HND", false},
		{"KIX", false},
		{"", true},
		{"hnd", true},
		{"HN", true},
		{"HNDX", true},
		{"H1D", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := ValidateAirportCode(tt.code)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrValidationFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
