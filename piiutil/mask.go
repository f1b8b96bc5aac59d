// Package piiutil masks contact details before they reach the logs.
package piiutil

import (
	"strings"
	"unicode"
)

// MaskEmail keeps the first and last rune of the local part and the whole
// domain. Values without a local part are masked as a plain token.
//
//	"user@example.com" -> "u**r@example.com"
//	"ab@example.com"   -> "a*@example.com"
//	"weird"            -> "w***d"
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return maskInner(email)
	}
	return maskInner(email[:at]) + email[at:]
}

// MaskPhone hides all digits but the last four, or the last one when the
// number has four digits or fewer. Separators stay where they are so the
// shape of the input is still visible. Input without digits is masked
// like a token, keeping only its last letter.
//
//	"(555) 123-4567" -> "(***) ***-4567"
//	"123"            -> "**3"
//	"AB-CD"          -> "**-*D"
func MaskPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	runes := []rune(phone)
	digits := count(runes, unicode.IsDigit)
	if digits == 0 {
		maskBefore(runes, 1, isSignificant)
		return string(runes)
	}

	keep := 4
	if digits <= 4 {
		keep = 1
	}
	maskBefore(runes, keep, unicode.IsDigit)
	return string(runes)
}

// maskInner replaces every rune except the first and the last with '*'.
// Two-rune input keeps only its first rune.
func maskInner(s string) string {
	runes := []rune(s)
	switch n := len(runes); {
	case n < 2:
		return s
	case n == 2:
		runes[1] = '*'
	default:
		for i := 1; i < n-1; i++ {
			runes[i] = '*'
		}
	}
	return string(runes)
}

// maskBefore masks runes matching pred, keeping the last keep of them.
func maskBefore(runes []rune, keep int, pred func(rune) bool) {
	seen := 0
	for i := len(runes) - 1; i >= 0; i-- {
		if !pred(runes[i]) {
			continue
		}
		seen++
		if seen > keep {
			runes[i] = '*'
		}
	}
}

func count(runes []rune, pred func(rune) bool) int {
	n := 0
	for _, r := range runes {
		if pred(r) {
			n++
		}
	}
	return n
}

func isSignificant(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
