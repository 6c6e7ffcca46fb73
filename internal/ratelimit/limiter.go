// Package ratelimit provides the two abuse controls of the API: a blanket
// per-IP per-route throttle on every sensitive endpoint, and an adaptive
// lockout that reacts to repeated login failures. The two are independent;
// either can reject a request on its own.
package ratelimit

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/connectify/user-api/internal/config"
	"github.com/connectify/user-api/internal/domain"
)

// Limiter builds per-route throttle middleware from the configured budgets.
type Limiter struct {
	cfg config.RateLimitConfig
}

// NewLimiter creates a limiter with the given budgets.
func NewLimiter(cfg config.RateLimitConfig) *Limiter {
	return &Limiter{cfg: cfg}
}

// Signup returns the throttle middleware for the signup endpoint.
func (l *Limiter) Signup() func(http.Handler) http.Handler {
	return l.perIP(l.cfg.Signup)
}

// Confirm returns the throttle middleware for the confirmation endpoint.
func (l *Limiter) Confirm() func(http.Handler) http.Handler {
	return l.perIP(l.cfg.Confirm)
}

// Login returns the throttle middleware for the login endpoint.
func (l *Limiter) Login() func(http.Handler) http.Handler {
	return l.perIP(l.cfg.Login)
}

// ProfileRead returns the throttle middleware for profile reads.
func (l *Limiter) ProfileRead() func(http.Handler) http.Handler {
	return l.perIP(l.cfg.ProfileRead)
}

// ProfileUpdate returns the throttle middleware for profile updates.
func (l *Limiter) ProfileUpdate() func(http.Handler) http.Handler {
	return l.perIP(l.cfg.ProfileUpdate)
}

// perIP builds a fixed-window per-IP limiter for the given request budget.
// When throttling is disabled the middleware is a no-op.
func (l *Limiter) perIP(requests int) func(http.Handler) http.Handler {
	if !l.cfg.Enabled {
		return passthrough
	}

	window := l.cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(throttledHandler),
	)
}

// throttledHandler writes the 429 response for exhausted budgets.
func throttledHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": domain.ErrThrottled.Error(),
	})
}

func passthrough(next http.Handler) http.Handler {
	return next
}
