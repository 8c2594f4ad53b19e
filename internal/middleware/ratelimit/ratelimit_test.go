package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(perMinute int) (*Limiter, *clock) {
	c := &clock{t: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
	return newLimiter(Config{RequestsPerMinute: perMinute}, c.now), c
}

func TestAllow_WindowLimit(t *testing.T) {
	rl, c := newTestLimiter(3)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("10.0.0.1")
		require.True(t, ok, "request %d", i+1)
	}

	c.advance(20 * time.Second)
	ok, retry := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, retry)

	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "other clients have their own budget")

	c.advance(40 * time.Second)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok, "a new window resets the budget")

	assert.EqualValues(t, 1, rl.GetMetrics().LimitedRequests)
}

func TestAllow_SteadyTrafficStillResets(t *testing.T) {
	rl, c := newTestLimiter(2)

	allowed := 0
	for i := 0; i < 12; i++ {
		if ok, _ := rl.Allow("10.0.0.1"); ok {
			allowed++
		}
		c.advance(10 * time.Second)
	}
	// Twelve requests over two minutes: two per window.
	assert.Equal(t, 4, allowed)
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, c := newTestLimiter(5)
	rl.Allow("10.0.0.1")
	c.advance(5 * time.Minute)
	rl.Allow("10.0.0.2")
	c.advance(6 * time.Minute)

	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(1)
	handler := rl.Middleware(
		func(r *http.Request) string { return "client" },
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) },
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
