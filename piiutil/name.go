package piiutil

import "strings"

// MaskName keeps the first letter of every name part and masks the other
// letters. Spaces and hyphens start a new part; an apostrophe does not.
//
//	"John O'Connor-Smith" -> "J*** O'******-S****"
//	"José María"          -> "J*** M****"
func MaskName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	runes := []rune(name)
	startOfPart := true
	for i, r := range runes {
		switch {
		case r == '\'':
		case !isSignificant(r):
			startOfPart = true
		case startOfPart:
			startOfPart = false
		default:
			runes[i] = '*'
		}
	}
	return string(runes)
}
