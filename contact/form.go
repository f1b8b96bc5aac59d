package contact

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Form is one set of raw field values as read from the UI.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Value returns the raw text of field; unknown fields read as "".
func (f Form) Value(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldMessage:
		return f.Message
	}
	return ""
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f Form) Trimmed() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Message: strings.TrimSpace(f.Message),
	}
}

// FieldResult pairs a Result with the field it belongs to.
type FieldResult struct {
	Field Field `json:"field"`
	Result
}

// Report is the outcome of validating a whole Form.
type Report struct {
	Name    Result `json:"name"`
	Email   Result `json:"email"`
	Phone   Result `json:"phone"`
	Message Result `json:"message"`
}

// ValidateForm runs every field validator; one field failing does not
// stop the others from being evaluated.
func ValidateForm(f Form, lim Limits) Report {
	return Report{
		Name:    ValidateName(f.Name, lim),
		Email:   ValidateEmail(f.Email, lim),
		Phone:   ValidatePhone(f.Phone, lim),
		Message: ValidateMessage(f.Message, lim),
	}
}

func (r Report) Get(field Field) Result {
	switch field {
	case FieldName:
		return r.Name
	case FieldEmail:
		return r.Email
	case FieldPhone:
		return r.Phone
	case FieldMessage:
		return r.Message
	}
	return Result{}
}

func (r Report) Valid() bool {
	return r.Name.Valid && r.Email.Valid && r.Phone.Valid && r.Message.Valid
}

// FirstInvalid returns the first failing field in display order; the UI
// moves focus there.
func (r Report) FirstInvalid() (Field, bool) {
	for _, f := range Fields {
		if !r.Get(f).Valid {
			return f, true
		}
	}
	return "", false
}

// Invalid lists failing fields in display order.
func (r Report) Invalid() []FieldResult {
	var out []FieldResult
	for _, f := range Fields {
		if res := r.Get(f); !res.Valid {
			out = append(out, FieldResult{Field: f, Result: res})
		}
	}
	return out
}

// Messages maps each failing field to its message.
func (r Report) Messages() map[string]string {
	inv := r.Invalid()
	if len(inv) == 0 {
		return nil
	}
	out := make(map[string]string, len(inv))
	for _, fr := range inv {
		out[string(fr.Field)] = fr.Message
	}
	return out
}

// CounterState is the visual state of the message character counter.
type CounterState string

const (
	CounterOK      CounterState = "ok"
	CounterWarning CounterState = "warning"
	CounterError   CounterState = "error"
)

// Counter describes the message length relative to the configured maximum.
type Counter struct {
	Length int          `json:"length"`
	Max    int          `json:"max"`
	State  CounterState `json:"state"`
}

func (c Counter) String() string {
	return fmt.Sprintf("%d/%d characters", c.Length, c.Max)
}

// CharCount measures the untrimmed message. The state turns to warning
// above 90% of the maximum and to error above the maximum.
func CharCount(raw string, lim Limits) Counter {
	c := Counter{Length: utf8.RuneCountInString(raw), Max: lim.MaxMessageLength, State: CounterOK}
	switch {
	case c.Length > c.Max:
		c.State = CounterError
	case c.Length*10 > c.Max*9:
		c.State = CounterWarning
	}
	return c
}
