package phone_test

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vortex-fintech/contactform/phone"
)

func TestDigits(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"formatted", "(555) 123-4567", "5551234567"},
		{"international", "+44 20 7946 0958", "442079460958"},
		{"letters only", "invalid-phone", ""},
		{"non ascii digits dropped", "٣٤٥12", "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, phone.Digits(tt.in))
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", ""},
		{"5", "(5"},
		{"555", "(555"},
		{"5551", "(555) 1"},
		{"555123", "(555) 123"},
		{"5551234", "(555) 123-4"},
		{"5551234567", "(555) 123-4567"},
		{"55512345678", "(555) 123-4567"},
		{"(555) 123-45", "(555) 123-45"},
		{"+1 555 123 4567", "(155) 512-3456"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, phone.Format(tt.in))
		})
	}
}

func TestFormat_ShapeByDigitCount(t *testing.T) {
	shapes := map[int]*regexp.Regexp{
		1: regexp.MustCompile(`^\(\d{1,3}$`),
		2: regexp.MustCompile(`^\(\d{3}\) \d{1,3}$`),
		3: regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{1,4}$`),
	}

	for n := 0; n <= 14; n++ {
		d := strings.Repeat("7", n)
		got := phone.Format(d)

		clamped := min(n, phone.FormatDigits)
		switch {
		case clamped == 0:
			assert.Empty(t, got)
		case clamped <= 3:
			assert.Regexp(t, shapes[1], got)
		case clamped <= 6:
			assert.Regexp(t, shapes[2], got)
		default:
			assert.Regexp(t, shapes[3], got)
		}
		assert.Len(t, phone.Digits(got), clamped, "digits for n=%d", n)
	}
}

func TestFormat_StableUnderReformat(t *testing.T) {
	for n := 0; n <= phone.FormatDigits; n++ {
		d := "9876543210"[:n]
		once := phone.Format(d)
		assert.Equal(t, once, phone.Format(phone.Digits(once)), "digits %q", d)
		assert.Equal(t, once, phone.Format(once), "reformat %q", once)
	}
}

func TestFormat_NeverAddsDigits(t *testing.T) {
	inputs := []string{"", "1", "12-34", "(555) 123-4567 ext 89", "no digits", "0000000000000000"}
	for _, in := range inputs {
		assert.LessOrEqual(t, len(phone.Digits(phone.Format(in))), len(phone.Digits(in)), in)
	}
}
