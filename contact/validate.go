package contact

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/vortex-fintech/contactform/phone"
)

var ErrUnknownField = errors.New("contact: unknown field")

// emailPattern: local part of unreserved/punctuation characters, domain of
// dot-separated alphanumeric labels that neither start nor end with '-'.
var emailPattern = regexp.MustCompile(
	"^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+" +
		`@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?` +
		`(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`,
)

// Validate dispatches raw to the validator of field.
func Validate(field Field, raw string, lim Limits) (Result, error) {
	switch field {
	case FieldName:
		return ValidateName(raw, lim), nil
	case FieldEmail:
		return ValidateEmail(raw, lim), nil
	case FieldPhone:
		return ValidatePhone(raw, lim), nil
	case FieldMessage:
		return ValidateMessage(raw, lim), nil
	default:
		return Result{}, ErrUnknownField
	}
}

// ValidateName checks: required, min length, max length, allowed characters.
func ValidateName(raw string, lim Limits) Result {
	name := canonical(raw)
	n := utf8.RuneCountInString(name)

	switch {
	case n == 0:
		return fail(EmptyField, "Name is required.")
	case n < lim.MinNameLength:
		return fail(TooShort, "Name must be at least %d characters long.", lim.MinNameLength)
	case n > lim.MaxNameLength:
		return fail(TooLong, "Name must be less than %d characters.", lim.MaxNameLength)
	case !nameCharsAllowed(name, lim.NameCharset):
		return fail(PatternMismatch, "Name can only contain letters, spaces, hyphens, and apostrophes.")
	}
	return pass()
}

// ValidateEmail checks: required, address grammar, max length.
// Grammar is checked before length.
func ValidateEmail(raw string, lim Limits) Result {
	email := strings.TrimSpace(raw)

	switch {
	case email == "":
		return fail(EmptyField, "Email is required.")
	case !emailPattern.MatchString(email):
		return fail(PatternMismatch, "Please enter a valid email address.")
	case utf8.RuneCountInString(email) > lim.MaxEmailLength:
		return fail(TooLong, "Email address is too long.")
	}
	return pass()
}

// ValidatePhone checks the digit-only projection of raw: required, min
// digits, max digits, no leading zero. Punctuation is ignored.
func ValidatePhone(raw string, lim Limits) Result {
	p := strings.TrimSpace(raw)
	if p == "" {
		return fail(EmptyField, "Phone number is required.")
	}

	digits := phone.Digits(p)
	switch {
	case len(digits) < lim.MinPhoneDigits:
		return fail(TooShort, "Phone number must be at least %d digits.", lim.MinPhoneDigits)
	case len(digits) > lim.MaxPhoneDigits:
		return fail(TooLong, "Phone number is too long.")
	case len(digits) > 0 && digits[0] == '0':
		return fail(PatternMismatch, "Phone number cannot start with 0.")
	}
	return pass()
}

// ValidateMessage checks: required, min length, max length. Both bounds
// are inclusive.
func ValidateMessage(raw string, lim Limits) Result {
	msg := canonical(raw)
	n := utf8.RuneCountInString(msg)

	switch {
	case n == 0:
		return fail(EmptyField, "Message is required.")
	case n < lim.MinMessageLength:
		return fail(TooShort, "Message must be at least %d characters long.", lim.MinMessageLength)
	case n > lim.MaxMessageLength:
		return fail(TooLong, "Message must be less than %d characters.", lim.MaxMessageLength)
	}
	return pass()
}

// canonical trims s and composes it (NFC) so "é" typed as e + U+0301
// counts as one character.
func canonical(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return norm.NFC.String(s)
}

func nameCharsAllowed(s string, cs NameCharset) bool {
	for _, r := range s {
		switch {
		case r == '\'' || r == '-' || unicode.IsSpace(r):
		case r < utf8.RuneSelf && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
		case cs != CharsetASCII && (unicode.IsLetter(r) || unicode.Is(unicode.Mn, r)):
		default:
			return false
		}
	}
	return true
}
