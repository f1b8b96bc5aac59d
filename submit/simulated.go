package submit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/vortex-fintech/contactform/timeutil"
)

const (
	DefaultDelay       = 2 * time.Second
	DefaultSuccessRate = 0.9
)

// Simulated acknowledges submissions after a fixed delay, succeeding with
// probability SuccessRate. It stands in for a real backend.
type Simulated struct {
	Delay       time.Duration
	SuccessRate float64
	Clock       timeutil.Clock
	// Rand returns a draw in [0,1). The submission succeeds when the draw
	// exceeds 1-SuccessRate.
	Rand func() float64
}

func NewSimulated(delay time.Duration, successRate float64) *Simulated {
	return &Simulated{
		Delay:       delay,
		SuccessRate: successRate,
		Clock:       timeutil.Default,
		Rand:        rand.Float64,
	}
}

func (s *Simulated) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	clock := s.Clock
	if clock == nil {
		clock = timeutil.Default
	}
	draw := rand.Float64
	if s.Rand != nil {
		draw = s.Rand
	}

	if err := clock.Sleep(ctx, s.Delay); err != nil {
		return Receipt{}, err
	}
	if draw() <= 1-s.SuccessRate {
		return Receipt{}, fmt.Errorf("simulated delivery of %s: %w", sub.ID, ErrTransientNetwork)
	}
	return Receipt{
		ID:      sub.ID,
		Status:  StatusSuccess,
		Message: SuccessMessage,
		At:      clock.Now(),
	}, nil
}
