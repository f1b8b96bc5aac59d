package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-fintech/contactform/timeutil"
)

func frozenLimiter(perSecond float64, burst int) (*VisitorLimiter, *timeutil.FrozenClock) {
	clk := timeutil.NewFrozenClock(time.Date(2025, 10, 11, 11, 0, 0, 0, time.UTC))
	l := NewVisitorLimiter(perSecond, burst)
	l.clock = clk
	return l, clk
}

func TestVisitorLimiter_BurstThenRefill(t *testing.T) {
	l, clk := frozenLimiter(1, 2)

	ok, _ := l.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok)

	ok, wait := l.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	ok, _ = l.Allow("10.0.0.2")
	assert.True(t, ok, "buckets are per client")

	clk.Advance(time.Second)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestVisitorLimiter_Sweep(t *testing.T) {
	l, clk := frozenLimiter(1, 1)
	l.Allow("a")
	clk.Advance(2 * time.Minute)
	l.Allow("b")

	assert.Equal(t, 1, l.Sweep(time.Minute))
	assert.Equal(t, 1, l.Len())
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, _ := frozenLimiter(0.5, 1)

	limited := 0
	r := gin.New()
	r.POST("/x", RateLimit(l, func() { limited++ }), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = "192.0.2.7:5000"
		r.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusNoContent, do().Code)

	w := do()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"rate_limited"`)
	assert.Equal(t, 1, limited)
}
