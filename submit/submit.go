// Package submit delivers validated contact forms.
//
// A Controller validates every field, keeps at most one submission per
// client in flight through a Guard and hands the trimmed form to a
// Submitter. Failed deliveries are reported to the caller and never retried.
package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vortex-fintech/contactform/contact"
)

var (
	// ErrTransientNetwork marks a delivery failure the user may retry.
	ErrTransientNetwork = errors.New("network error")
	// ErrInProgress is returned while the same client has a pending submission.
	ErrInProgress = errors.New("submission already in progress")
	// ErrInvalidForm matches every *FormError.
	ErrInvalidForm = errors.New("form is invalid")
	ErrNilSubmitter = errors.New("submit: nil submitter")
)

// FailureNotice is the text shown to the user when a submission fails.
const FailureNotice = "There was an error sending your message. Please try again."

// SuccessMessage is the acknowledgment text of an accepted submission.
const SuccessMessage = "Form submitted successfully"

// FormError carries the report of a form that failed validation.
type FormError struct {
	Report contact.Report
}

func (e *FormError) Error() string {
	if f, ok := e.Report.FirstInvalid(); ok {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidForm, f, e.Report.Get(f).Message)
	}
	return ErrInvalidForm.Error()
}

func (e *FormError) Is(target error) bool { return target == ErrInvalidForm }

type Status string

const StatusSuccess Status = "success"

// Submission is one validated form on its way to a Submitter.
type Submission struct {
	ID       uuid.UUID
	ClientID string
	Form     contact.Form
	At       time.Time
}

// Receipt acknowledges a delivered submission.
type Receipt struct {
	ID      uuid.UUID `json:"id"`
	Status  Status    `json:"status"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Submitter delivers a submission. Implementations wrap ErrTransientNetwork
// for failures worth retrying by hand and return ctx.Err() when canceled.
type Submitter interface {
	Submit(ctx context.Context, s Submission) (Receipt, error)
}

type SubmitterFunc func(ctx context.Context, s Submission) (Receipt, error)

func (f SubmitterFunc) Submit(ctx context.Context, s Submission) (Receipt, error) { return f(ctx, s) }
