package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/community-hub/internal/config"
)

// loginWindowScript implements a fixed-window counter: the first hit in
// a window sets the expiry, and every hit returns the current count
// plus the window's remaining TTL in milliseconds.
var loginWindowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	return { count, ttl }
`)

// NewLoginWindow limits credential endpoints (register, local login) to
// cfg.Limit attempts per cfg.Window per client IP. The check runs
// before the handler, so it fires independent of credential
// correctness. Redis keeps the counters shared across instances; when
// Redis is unavailable an in-process window applies the same policy.
func NewLoginWindow(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	local := newWindowCounter()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := cfg.Prefix + ":login:" + ip

			var count int64
			var retryMs int64
			usedRedis := false
			if rdb != nil {
				vals, err := loginWindowScript.Run(c.Request().Context(), rdb,
					[]string{key}, cfg.Window.Milliseconds()).Result()
				if err == nil {
					if arr, ok := vals.([]interface{}); ok && len(arr) == 2 {
						count = asInt64(arr[0])
						retryMs = asInt64(arr[1])
						usedRedis = true
					}
				} else if cfg.Debug {
					c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
				}
			}
			if !usedRedis {
				count, retryMs = local.hit(key, cfg.Window)
			}

			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				secs := int(math.Ceil(float64(retryMs) / 1000.0))
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				if cfg.Debug {
					c.Logger().Infof("[ratelimit] block key=%s count=%d retry=%dms", key, count, retryMs)
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too many requests",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// windowCounter is the in-process fallback used when Redis is down. It
// keeps one fixed window per key. Expired entries are swept on the next
// hit after sweepEvery elapses, so keys for clients that never return
// do not accumulate.
type windowCounter struct {
	mu        sync.Mutex
	entries   map[string]*windowEntry
	nextSweep time.Time
}

type windowEntry struct {
	count int64
	reset time.Time
}

const sweepEvery = time.Minute

func newWindowCounter() *windowCounter {
	return &windowCounter{
		entries:   make(map[string]*windowEntry),
		nextSweep: time.Now().Add(sweepEvery),
	}
}

// hit records an attempt and returns the count within the current
// window together with the window's remaining duration in milliseconds.
func (w *windowCounter) hit(key string, window time.Duration) (int64, int64) {
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	if now.After(w.nextSweep) {
		for k, e := range w.entries {
			if now.After(e.reset) {
				delete(w.entries, k)
			}
		}
		w.nextSweep = now.Add(sweepEvery)
	}
	e, ok := w.entries[key]
	if !ok || now.After(e.reset) {
		e = &windowEntry{reset: now.Add(window)}
		w.entries[key] = e
	}
	e.count++
	return e.count, time.Until(e.reset).Milliseconds()
}
