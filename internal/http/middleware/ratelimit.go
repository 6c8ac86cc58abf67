package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter throttles callers per client IP, one token bucket each.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64

	now func() time.Time
}

type bucket struct {
	tokens  float64
	updated time.Time
}

// take refills the bucket for the time elapsed since the last call, then
// spends one token if available.
func (b *bucket) take(now time.Time, rate, burst float64) bool {
	b.tokens += now.Sub(b.updated).Seconds() * rate
	if b.tokens > burst {
		b.tokens = burst
	}
	b.updated = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// NewRateLimiter allows rate requests per second with the given burst per
// client. Idle buckets are swept in the background so one-off clients do
// not accumulate forever.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
	}
	go rl.sweepLoop()
	return rl
}

// Allow reports whether the client identified by ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: rl.burst, updated: now}
		rl.buckets[ip] = b
	}
	return b.take(now, rl.rate, rl.burst)
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.sweep(rl.now().Add(-10 * time.Minute))
	}
}

// sweep drops buckets that have been idle since before cutoff.
func (rl *RateLimiter) sweep(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.buckets {
		if b.updated.Before(cutoff) {
			delete(rl.buckets, ip)
		}
	}
}

// RateLimit rejects requests beyond the configured rate with
// 429 Too Many Requests and a one-second Retry-After hint.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			// Prefer X-Real-Ip set by chi's RealIP middleware.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !limiter.Allow(ip) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
