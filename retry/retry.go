// Package retry holds the two retry shapes used at startup and for
// best-effort cleanup. Contact submissions themselves are never retried.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy shapes the exponential backoff of Init.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		MaxElapsed:      20 * time.Second,
	}
}

// Init retries fn with exponential backoff until it succeeds, returns a
// backoff.Permanent error, p.MaxElapsed passes or ctx is done. Used for
// dependencies that must be reachable before serving (Redis, SMTP).
func Init(ctx context.Context, p Policy, fn func(context.Context) error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.Multiplier = 2.0
	exp.MaxInterval = p.MaxInterval
	exp.RandomizationFactor = 0.5
	exp.Reset()

	type unit struct{}
	op := func() (unit, error) {
		return unit{}, fn(ctx)
	}

	_, err := backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(exp),
		backoff.WithMaxElapsedTime(p.MaxElapsed),
	)
	return err
}

// Fast makes up to attempts calls spaced by delay.
func Fast(ctx context.Context, attempts int, delay time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
