package httpapi

import (
	"math"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/vortex-fintech/contactform/errors"
	"github.com/vortex-fintech/contactform/timeutil"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// VisitorLimiter keeps one token bucket per client IP.
type VisitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	r        rate.Limit
	burst    int
	clock    timeutil.Clock
}

func NewVisitorLimiter(perSecond float64, burst int) *VisitorLimiter {
	return &VisitorLimiter{
		visitors: make(map[string]*visitor),
		r:        rate.Limit(perSecond),
		burst:    burst,
		clock:    timeutil.Default,
	}
}

// Allow spends one token of key's bucket. When the bucket is empty it
// returns false and the time until the next token.
func (l *VisitorLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.r, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	if v.limiter.AllowN(now, 1) {
		return true, 0
	}
	return false, l.retryAfter()
}

func (l *VisitorLimiter) retryAfter() time.Duration {
	if l.r <= 0 || math.IsInf(float64(l.r), 1) {
		return time.Second
	}
	return time.Duration(float64(time.Second) / float64(l.r))
}

// Sweep forgets clients idle for longer than maxIdle and returns how many
// were removed.
func (l *VisitorLimiter) Sweep(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	n := 0
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > maxIdle {
			delete(l.visitors, k)
			n++
		}
	}
	return n
}

func (l *VisitorLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RateLimit rejects requests over the client's budget with 429 and
// Retry-After. onLimited may be nil.
func RateLimit(l *VisitorLimiter, onLimited func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := l.Allow(c.ClientIP())
		if ok {
			c.Next()
			return
		}
		if onLimited != nil {
			onLimited()
		}
		c.Abort()
		errors.RateLimited(wait).ToHTTPWithRetry(c.Writer, wait)
	}
}
