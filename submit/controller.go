package submit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vortex-fintech/contactform/contact"
	"github.com/vortex-fintech/contactform/logger"
	"github.com/vortex-fintech/contactform/logutil"
	"github.com/vortex-fintech/contactform/timeutil"
)

// Outcome labels how a submit attempt ended.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeInvalid    Outcome = "invalid"
	OutcomeInProgress Outcome = "in_progress"
	OutcomeFailed     Outcome = "failed"
	OutcomeCanceled   Outcome = "canceled"
)

// Recorder receives validation and submission observations.
type Recorder interface {
	ObserveValidation(field contact.Field, res contact.Result)
	ObserveSubmission(outcome Outcome, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveValidation(contact.Field, contact.Result) {}
func (nopRecorder) ObserveSubmission(Outcome, time.Duration)        {}

// Controller runs the submit flow: validate all fields, take the client's
// in-flight slot, deliver, release the slot.
type Controller struct {
	submitter Submitter
	limits    contact.Limits
	guard     Guard
	log       logger.LoggerInterface
	env       string
	clock     timeutil.Clock
	rec       Recorder
	newID     func() uuid.UUID
}

type Option func(*Controller)

func WithGuard(g Guard) Option { return func(c *Controller) { c.guard = g } }

// WithLogger sets the logger; env decides how much of the form is logged.
func WithLogger(l logger.LoggerInterface, env string) Option {
	return func(c *Controller) { c.log, c.env = l, env }
}

func WithClock(clk timeutil.Clock) Option { return func(c *Controller) { c.clock = clk } }

func WithRecorder(r Recorder) Option { return func(c *Controller) { c.rec = r } }

func WithIDs(gen func() uuid.UUID) Option { return func(c *Controller) { c.newID = gen } }

func NewController(s Submitter, lim contact.Limits, opts ...Option) (*Controller, error) {
	if s == nil {
		return nil, ErrNilSubmitter
	}
	c := &Controller{
		submitter: s,
		limits:    lim,
		guard:     NewMemoryGuard(),
		log:       logger.NewNop(),
		clock:     timeutil.Default,
		rec:       nopRecorder{},
		newID:     uuid.New,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Controller) Limits() contact.Limits { return c.limits }

// ValidateField validates one field, as on blur.
func (c *Controller) ValidateField(field contact.Field, raw string) (contact.Result, error) {
	res, err := contact.Validate(field, raw, c.limits)
	if err != nil {
		return contact.Result{}, err
	}
	c.rec.ObserveValidation(field, res)
	return res, nil
}

// ValidateForm validates every field of f.
func (c *Controller) ValidateForm(f contact.Form) contact.Report {
	rep := contact.ValidateForm(f, c.limits)
	for _, field := range contact.Fields {
		c.rec.ObserveValidation(field, rep.Get(field))
	}
	return rep
}

// Submit validates f and, when it is valid, delivers its trimmed values.
// An invalid form yields a *FormError without contacting the submitter.
func (c *Controller) Submit(ctx context.Context, clientID string, f contact.Form) (Receipt, error) {
	start := c.clock.Now()

	rep := c.ValidateForm(f)
	if !rep.Valid() {
		first, _ := rep.FirstInvalid()
		c.log.Infow("contact form rejected",
			"client_id", clientID,
			"first_invalid", string(first),
			"violations", logutil.SanitizeViolations(rep.Messages(), c.env, ""),
		)
		c.rec.ObserveSubmission(OutcomeInvalid, 0)
		return Receipt{}, &FormError{Report: rep}
	}

	release, err := c.guard.Acquire(ctx, clientID)
	if err != nil {
		outcome := classify(err)
		c.log.Warnw("contact submission refused", "client_id", clientID, "outcome", string(outcome), "error", err)
		c.rec.ObserveSubmission(outcome, 0)
		return Receipt{}, err
	}
	defer release()

	sub := Submission{
		ID:       c.newID(),
		ClientID: clientID,
		Form:     f.Trimmed(),
		At:       start,
	}
	kv := []any{"submission_id", sub.ID.String(), "client_id", clientID, "at", sub.At}
	for _, fld := range logutil.SubmissionFields(sub.Form, c.env) {
		kv = append(kv, fld)
	}

	rcpt, err := c.submitter.Submit(ctx, sub)
	elapsed := c.clock.Since(start)
	if err != nil {
		outcome := classify(err)
		c.log.Warnw("contact submission failed", append(kv, "outcome", string(outcome), "elapsed", elapsed, "error", err)...)
		c.rec.ObserveSubmission(outcome, elapsed)
		return Receipt{}, err
	}

	c.log.Infow("contact form submitted", append(kv, "elapsed", elapsed)...)
	c.rec.ObserveSubmission(OutcomeSuccess, elapsed)
	return rcpt, nil
}

func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrInvalidForm):
		return OutcomeInvalid
	case errors.Is(err, ErrInProgress):
		return OutcomeInProgress
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeFailed
	}
}
