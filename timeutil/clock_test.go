package timeutil

import (
	"context"
	"testing"
	"time"
)

func TestUTCClockNowIsUTC(t *testing.T) {
	var c UTCClock
	now := c.Now()
	if now.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", now.Location())
	}
	if Now().Location() != time.UTC {
		t.Fatalf("Now() must be UTC")
	}
}

func TestSleepCancel(t *testing.T) {
	var c UTCClock
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := c.Sleep(ctx, 200*time.Millisecond)
	if err == nil {
		t.Fatalf("expected error on canceled context")
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatalf("sleep should return quickly on cancel")
	}
}

func TestSleepZero(t *testing.T) {
	var c UTCClock
	if err := c.Sleep(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFrozenClockAdvance(t *testing.T) {
	start := time.Date(2025, 10, 11, 11, 0, 0, 0, time.UTC)
	c := NewFrozenClock(start)
	if !c.Now().Equal(start) {
		t.Fatalf("frozen now mismatch")
	}
	c.Advance(2 * time.Hour)
	want := start.Add(2 * time.Hour)
	if !c.Now().Equal(want) {
		t.Fatalf("frozen advance mismatch: got %v want %v", c.Now(), want)
	}
	if got := c.Since(start); got != 2*time.Hour {
		t.Fatalf("Since mismatch: got %v", got)
	}
}

func TestFrozenClockSleepAdvancesWithoutWaiting(t *testing.T) {
	start := time.Date(2025, 10, 11, 11, 0, 0, 0, time.UTC)
	c := NewFrozenClock(start)

	wall := time.Now()
	if err := c.Sleep(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(wall) > 100*time.Millisecond {
		t.Fatalf("frozen sleep must not block")
	}
	if !c.Now().Equal(start.Add(2 * time.Second)) {
		t.Fatalf("frozen sleep must advance time, got %v", c.Now())
	}

	d, n := c.Slept()
	if d != 2*time.Second || n != 1 {
		t.Fatalf("unexpected sleep stats: %v %d", d, n)
	}
}

func TestFrozenClockSleepCanceled(t *testing.T) {
	c := NewFrozenClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Sleep(ctx, time.Second); err == nil {
		t.Fatalf("expected context error")
	}
	if _, n := c.Slept(); n != 0 {
		t.Fatalf("canceled sleep must not be recorded")
	}
}
