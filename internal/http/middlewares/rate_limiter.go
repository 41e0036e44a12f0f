package middlewares

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// pruneThreshold bounds how many windows accumulate before expired ones are swept.
const pruneThreshold = 1024

type window struct {
	count int
	ends  time.Time
}

// RateLimiter is a fixed-window counter per key, held in process memory.
type RateLimiter struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// allow records a hit for key. When the limit is reached it returns how long until the window resets.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || !now.Before(w.ends) {
		if !ok && len(rl.windows) >= pruneThreshold {
			for k, old := range rl.windows {
				if !now.Before(old.ends) {
					delete(rl.windows, k)
				}
			}
		}

		rl.windows[key] = &window{count: 1, ends: now.Add(rl.period)}
		return true, 0
	}

	if w.count >= rl.limit {
		return false, w.ends.Sub(now)
	}

	w.count++
	return true, 0
}

// RateLimiterMiddleware answers 429 with Retry-After once keyFn's key exceeds the limit.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			key = c.ClientIP()
		}

		ok, wait := rl.allow(key)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many registration attempts. Please try again shortly.")
			return
		}

		c.Next()
	}
}

// KeyByIP keys on gin's client IP, which honours trusted proxy headers.
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}
