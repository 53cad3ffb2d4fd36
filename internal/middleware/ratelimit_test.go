package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-hub/internal/config"
)

func TestWindowCounter(t *testing.T) {
	w := newWindowCounter()

	for i := int64(1); i <= 5; i++ {
		count, _ := w.hit("k", time.Minute)
		assert.Equal(t, i, count)
	}

	// Separate keys count independently.
	count, _ := w.hit("other", time.Minute)
	assert.Equal(t, int64(1), count)
}

func TestWindowCounterReset(t *testing.T) {
	w := newWindowCounter()
	w.hit("k", time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	// Expired window starts over.
	count, _ := w.hit("k", time.Minute)
	assert.Equal(t, int64(1), count)
}

// Expired windows for clients that never come back must be evicted,
// not retained forever.
func TestWindowCounterSweepsExpiredEntries(t *testing.T) {
	w := newWindowCounter()
	for i := 0; i < 100; i++ {
		w.hit(strconv.Itoa(i), time.Nanosecond)
	}
	require.Len(t, w.entries, 100)

	time.Sleep(5 * time.Millisecond)
	w.nextSweep = time.Now().Add(-time.Second) // force the sweep on the next hit
	w.hit("fresh", time.Minute)

	assert.Len(t, w.entries, 1)
	_, ok := w.entries["fresh"]
	assert.True(t, ok)
}

func TestLoginWindowBlocksSixthAttempt(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled: true,
		Limit:   5,
		Window:  time.Minute,
		Prefix:  "rl",
	}
	// No Redis client: the in-process window applies the same policy.
	mw := NewLoginWindow(cfg, nil)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e := echo.New()
	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
		return rec
	}

	for i := 0; i < 5; i++ {
		rec := do()
		assert.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
	}

	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestLoginWindowDisabled(t *testing.T) {
	mw := NewLoginWindow(config.RateLimitConfig{Enabled: false}, nil)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e := echo.New()
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
