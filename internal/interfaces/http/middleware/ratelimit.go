package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// RateLimiter grants each key limit requests per fixed window. State is
// per process, so behind a load balancer the effective budget scales with
// the replica count.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*window

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	start time.Time
	used  int
}

// NewRateLimiter starts a janitor that forgets idle keys; call Stop to end it
func NewRateLimiter(limit int, per time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  per,
		windows: make(map[string]*window),
		stop:    make(chan struct{}),
	}
	go rl.janitor(2 * per)
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, w := range rl.windows {
				if now.Sub(w.start) > every {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// take consumes one request for key. It reports the requests left in the
// window and how long until the window resets.
func (rl *RateLimiter) take(key string) (remaining int, reset time.Duration, ok bool) {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, found := rl.windows[key]
	if !found || now.Sub(w.start) >= rl.window {
		w = &window{start: now}
		rl.windows[key] = w
	}
	reset = rl.window - now.Sub(w.start)
	if w.used >= rl.limit {
		return 0, reset, false
	}
	w.used++
	return rl.limit - w.used, reset, true
}

// Allow consumes one request for key and reports whether it fits the budget
func (rl *RateLimiter) Allow(key string) bool {
	_, _, ok := rl.take(key)
	return ok
}

// Remaining reports the unused budget of key without consuming any
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	w, found := rl.windows[key]
	if !found || time.Since(w.start) >= rl.window {
		return rl.limit
	}
	return rl.limit - w.used
}

// RateLimit budgets requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return limitBy(limiter, func(c *gin.Context) string { return c.ClientIP() },
		"Too many requests. Please try again later.")
}

// RateLimitByKey budgets requests per key returned by keyFunc
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return limitBy(limiter, keyFunc, "Too many requests. Please try again later.")
}

// AuthRateLimit guards the credential endpoints. Its keys are namespaced so
// sharing a limiter with RateLimit does not mix the two budgets.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return limitBy(limiter, func(c *gin.Context) string { return "auth:" + c.ClientIP() },
		"Too many authentication attempts. Please try again later.")
}

func limitBy(limiter *RateLimiter, keyFunc func(*gin.Context) string, message string) gin.HandlerFunc {
	limit := strconv.Itoa(limiter.limit)
	return func(c *gin.Context) {
		remaining, reset, ok := limiter.take(keyFunc(c))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(reset.Seconds()))))
			abortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
			return
		}
		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
