// Package contact holds the contact-form field rules.
//
// Every validator is a pure function of the raw field text and a Limits
// value. Checks run in a fixed order and the first violated rule decides
// the Result, so a multiply-invalid value always yields the same message.
package contact

import "fmt"

// Field names one input of the contact form.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldMessage Field = "message"
)

// Fields lists the form fields in display order.
var Fields = []Field{FieldName, FieldEmail, FieldPhone, FieldMessage}

// ParseField maps a wire name ("name", "email", ...) to a Field.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Kind is the stable machine code of a failed rule.
type Kind string

const (
	KindNone        Kind = ""
	EmptyField      Kind = "required"
	TooShort        Kind = "too_short"
	TooLong         Kind = "too_long"
	PatternMismatch Kind = "pattern_mismatch"
)

// Result is the outcome of validating one field once.
type Result struct {
	Valid   bool   `json:"valid"`
	Kind    Kind   `json:"reason"`
	Message string `json:"message"`
}

func pass() Result { return Result{Valid: true} }

func fail(k Kind, format string, a ...any) Result {
	msg := format
	if len(a) > 0 {
		msg = fmt.Sprintf(format, a...)
	}
	return Result{Kind: k, Message: msg}
}
