package timeutil

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts the time source so delays can be driven from tests.
type Clock interface {
	// Now returns the current time in UTC.
	Now() time.Time
	Since(t time.Time) time.Duration
	// Sleep waits d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// UTCClock is the system clock in UTC.
type UTCClock struct{}

func (UTCClock) Now() time.Time                  { return time.Now().UTC() }
func (UTCClock) Since(t time.Time) time.Duration { return time.Since(t) }
func (UTCClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FrozenClock stands still until moved by Set, Advance or Sleep.
// Sleep returns immediately after advancing the clock by d, which keeps
// tests of delayed operations fast and deterministic.
type FrozenClock struct {
	mu     sync.RWMutex
	t      time.Time
	slept  time.Duration
	sleeps int
}

func NewFrozenClock(t time.Time) *FrozenClock {
	return &FrozenClock{t: t}
}

func (c *FrozenClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

func (c *FrozenClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }

func (c *FrozenClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	if d > 0 {
		c.t = c.t.Add(d)
		c.slept += d
	}
	c.sleeps++
	c.mu.Unlock()
	return nil
}

func (c *FrozenClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *FrozenClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Slept reports the total duration and number of Sleep calls so far.
func (c *FrozenClock) Slept() (time.Duration, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slept, c.sleeps
}

// Default is the process-wide clock (UTC).
var Default Clock = UTCClock{}

func Now() time.Time { return Default.Now() }
