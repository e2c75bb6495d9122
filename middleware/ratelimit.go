// middleware/ratelimit.go
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dalemusser/emailcheck/httputil"
	"golang.org/x/time/rate"
)

// KeyLimiter holds one token bucket per key (e.g., per client IP).
// Keys idle for longer than ttl are dropped on a later call.
type KeyLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyLimiter creates a limiter allowing rps requests per second per key
// with the given burst. ttl <= 0 defaults to one hour.
func NewKeyLimiter(rps float64, burst int, ttl time.Duration) *KeyLimiter {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &KeyLimiter{
		limiters:  make(map[string]*limiterEntry),
		rate:      rate.Limit(rps),
		burst:     burst,
		ttl:       ttl,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether a request for key may proceed, consuming a token.
func (kl *KeyLimiter) Allow(key string) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.now()
	if now.Sub(kl.lastSweep) > kl.ttl {
		for k, e := range kl.limiters {
			if now.Sub(e.lastSeen) > kl.ttl {
				delete(kl.limiters, k)
			}
		}
		kl.lastSweep = now
	}

	e, ok := kl.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(kl.rate, kl.burst)}
		kl.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Size returns the number of tracked keys.
func (kl *KeyLimiter) Size() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.limiters)
}

// ClientIP returns the request's client address without the port.
// Run chi's RealIP middleware first to honor X-Forwarded-For / X-Real-IP.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimit rejects clients exceeding rps requests per second (with burst)
// with 429 and a JSON error body. rps <= 0 disables the limit.
func RateLimit(rps float64, burst int) func(next http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return RateLimitWith(NewKeyLimiter(rps, burst, time.Hour))
}

// RateLimitWith is RateLimit using a caller-owned KeyLimiter.
func RateLimitWith(kl *KeyLimiter) func(next http.Handler) http.Handler {
	retryAfter := "1"
	if kl.rate > 0 && kl.rate < 1 {
		retryAfter = strconv.Itoa(int(1/float64(kl.rate) + 0.5))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !kl.Allow(ClientIP(r)) {
				w.Header().Set("Retry-After", retryAfter)
				httputil.JSONError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
