package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		flight string
		want   bool
	}{
		{"ANA1951", true},
		{"ANA2051", false},
		{"ANA2000", false},
		{"ANA1999", true},
		{"ANA4701", false},
		{"ANA99999999999999999999", false},
		{"ANA", true},
		{"ANA12A", true},
		{"JAL101", true},
		{"JAL3001", true},
		{"ADO11", true},
		{"SNA37", true},
		{"SFJ41", true},
		{"ORC61", true},
		{"IBX11", true},
		{"JTA21", true},
		{"JAC3701", true},
		{"HAC2301", true},
		{"AMX101", true},
		{"XYZ100", false},
		{"APJ101", false},
		{"101", false},
		{"", false},
		{"jal101", false},
	}

	for _, tt := range tests {
		t.Run(tt.flight, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRelevant(tt.flight))
		})
	}
}

func TestIsRelevant_Idempotent(t *testing.T) {
	for _, f := range []string{"ANA1951", "ANA2051", "XYZ100", ""} {
		first := IsRelevant(f)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, IsRelevant(f), f)
		}
	}
}

func TestPolicy_Custom(t *testing.T) {
	p := NewPolicy([]string{"JAL"}, "JAL", 3000)

	assert.True(t, p.IsRelevant("JAL2999"))
	assert.False(t, p.IsRelevant("JAL3000"))
	assert.False(t, p.IsRelevant("ANA11"))
}

func TestAirlineCode(t *testing.T) {
	assert.Equal(t, "JAL", AirlineCode("JAL101"))
	assert.Equal(t, "ANA", AirlineCode("ANA"))
	assert.Equal(t, "", AirlineCode("101"))
	assert.Equal(t, "", AirlineCode(""))
	assert.Equal(t, "", AirlineCode("jal101"))
}
