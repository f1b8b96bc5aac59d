// Package phone formats phone input as the user types.
package phone

import "strings"

// FormatDigits is the number of digits kept by Format. Excess trailing
// digits are dropped, not rejected.
const FormatDigits = 10

// Digits returns the digit-only projection of raw: every character outside
// ASCII 0-9 is removed.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Format punctuates raw as "(XXX) XXX-XXXX" based on how many digits it holds.
//
//	""             -> ""
//	"55"           -> "(55"
//	"55512"        -> "(555) 12"
//	"5551234567"   -> "(555) 123-4567"
//	"555123456789" -> "(555) 123-4567"
//
// Feeding the output back through Format yields the same string.
func Format(raw string) string {
	d := Digits(raw)
	if len(d) > FormatDigits {
		d = d[:FormatDigits]
	}

	switch n := len(d); {
	case n == 0:
		return ""
	case n <= 3:
		return "(" + d
	case n <= 6:
		return "(" + d[:3] + ") " + d[3:]
	default:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	}
}
