package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := New("593", "0")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trunk prefix replaced", "0991234567", "+593991234567"},
		{"bare number gets country code", "991234567", "+593991234567"},
		{"already canonical unchanged", "+593991234567", "+593991234567"},
		{"duplicated trunk zero collapsed", "+5930991234567", "+593991234567"},
		{"formatting stripped", "099 123-4567", "+593991234567"},
		{"parens and dots stripped", "(099) 123.4567", "+593991234567"},
		{"leading whitespace before plus", " +593991234567", "+593991234567"},
		{"foreign prefix kept as-is", "+15551234567", "+15551234567"},
		{"empty input", "", ""},
		{"punctuation only", "-- ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := New("593", "0")

	inputs := []string{"0991234567", "+5930991234567", "991234567", "+593991234567"}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "re-normalizing %q must be a no-op", in)
	}
}

func TestIsNationalID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1712345678", true},
		{"12345", true},
		{"1234", false},
		{"+593991234567", false},
		{"17-1234567.8", true},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNationalID(tt.in), "input %q", tt.in)
	}
}
