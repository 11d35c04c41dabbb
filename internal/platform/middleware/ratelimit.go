package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/medbook/medbook/internal/platform/apperr"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL is how long an idle client's limiter is kept. Zero means 3m.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
	}
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter holds one token bucket per client IP. Idle clients are
// evicted lazily while adding new ones, so no background goroutine is
// needed.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	idle    time.Duration
	sweep   time.Time
	now     func() time.Time
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	idle := cfg.IdleTTL
	if idle <= 0 {
		idle = 3 * time.Minute
	}
	return &RateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.BurstSize,
		idle:    idle,
		now:     time.Now,
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if c, ok := rl.clients[key]; ok {
		c.seen = now
		return c.lim
	}

	if now.Sub(rl.sweep) > rl.idle {
		for k, c := range rl.clients {
			if now.Sub(c.seen) > rl.idle {
				delete(rl.clients, k)
			}
		}
		rl.sweep = now
	}

	l := rate.NewLimiter(rl.limit, rl.burst)
	rl.clients[key] = &client{lim: l, seen: now}
	return l
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Middleware rejects requests beyond the client's budget with 429.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	limitHeader := strconv.FormatFloat(float64(rl.limit), 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lim := rl.get(c.RealIP())
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limitHeader)

			r := lim.ReserveN(rl.now(), 1)
			if !r.OK() {
				h.Set("X-RateLimit-Remaining", "0")
				return apperr.HTTP(apperr.New(apperr.KindRateLimited, "Too many requests, please try again later"), "")
			}
			if delay := r.DelayFrom(rl.now()); delay > 0 {
				r.CancelAt(rl.now())
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				h.Set("X-RateLimit-Remaining", "0")
				return apperr.HTTP(apperr.New(apperr.KindRateLimited, "Too many requests, please try again later"), "")
			}
			return next(c)
		}
	}
}

// RateLimit returns a rate limiting middleware with its own limiter.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return NewRateLimiter(cfg).Middleware()
}
