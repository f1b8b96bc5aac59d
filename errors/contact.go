package errors

import (
	"context"
	"errors"

	"github.com/vortex-fintech/contactform/contact"
	"github.com/vortex-fintech/contactform/submit"
)

// FromReport turns a failed form report into validation_failed with one
// violation per invalid field, in display order. The description is the
// message shown next to the field.
func FromReport(rep contact.Report) ErrorResponse {
	inv := rep.Invalid()
	vs := make([]FieldViolation, 0, len(inv))
	for _, fr := range inv {
		vs = append(vs, FieldViolation{
			Field:       string(fr.Field),
			Reason:      string(fr.Kind),
			Description: fr.Message,
		})
	}
	e := ValidationViolations(vs).WithMessage("Please correct the highlighted fields")
	if f, ok := rep.FirstInvalid(); ok {
		e = e.WithDetail("focus", string(f))
	}
	return e
}

// UnknownField reports a validation request for a field the form lacks.
func UnknownField(name string) ErrorResponse {
	e := NotFound().WithReason("unknown_field").WithMessage("Unknown form field")
	if name != "" {
		e = e.WithDetail("field", name)
	}
	return e
}

// ToErrorResponse maps any error of the submit flow to a transport response.
func ToErrorResponse(err error) ErrorResponse {
	if err == nil {
		return Internal().WithReason("unexpected_error")
	}

	var e ErrorResponse
	if errors.As(err, &e) {
		return e
	}

	var fe *submit.FormError
	switch {
	case errors.As(err, &fe):
		return FromReport(fe.Report)
	case errors.Is(err, contact.ErrUnknownField):
		return UnknownField("")
	case errors.Is(err, context.Canceled):
		return Canceled()
	case errors.Is(err, context.DeadlineExceeded):
		return DeadlineExceeded()
	case errors.Is(err, submit.ErrInProgress):
		return Aborted().
			WithReason("submission_in_progress").
			WithMessage("A submission is already being sent")
	case errors.Is(err, submit.ErrTransientNetwork):
		return Unavailable().
			WithReason("transient_network_error").
			WithMessage(submit.FailureNotice)
	default:
		return Internal().WithReason("unexpected_error").WithMessage(submit.FailureNotice)
	}
}
