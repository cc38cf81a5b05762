package api

import (
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/trygglabs/trygg/internal/setup/config"
	"golang.org/x/time/rate"
)

// rateLimiter tracks one token bucket per client so a runaway
// integration cannot starve the rest of the platform.
type rateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// newRateLimiter creates a rate limiter from configuration, with sane
// limits when the config leaves them unset.
func newRateLimiter(cfg *config.RateLimit) *rateLimiter {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if limit <= 0 {
		limit = 50
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = 100
	}

	return &rateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// get returns the limiter for a client key, creating it on first sight.
func (rl *rateLimiter) get(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, ok := rl.limiters[key]
	rl.mu.RUnlock()

	if ok {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check in case another goroutine created it first.
	if limiter, ok := rl.limiters[key]; ok {
		return limiter
	}

	limiter = rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[key] = limiter

	return limiter
}

// rateLimitMiddleware enforces the per-client limit. Clients are keyed by
// remote address with the port stripped, so reconnects share a bucket.
func rateLimitMiddleware(rl *rateLimiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			}

			if !rl.get(key).Allow() {
				respondError(w, http.StatusTooManyRequests, ErrCodeRateLimited,
					"rate limit exceeded, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
