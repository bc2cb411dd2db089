package main

import (
	"context"
	"math"
	"net"
	"net/http"
	"sync"
	"time"
)

type limitKey struct {
	route  string
	client string
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// rateLimiter hands every (route, client) pair a bucket of limit tokens that refills
// continuously over window.
type rateLimiter struct {
	mu      sync.Mutex
	limit   float64
	window  time.Duration
	buckets map[limitKey]*bucket
	now     func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   float64(limit),
		window:  window,
		buckets: make(map[limitKey]*bucket),
		now:     time.Now,
	}
}

func (rl *rateLimiter) allow(route, client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	key := limitKey{route: route, client: client}
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.limit, seen: now}
		rl.buckets[key] = b
	} else {
		refill := now.Sub(b.seen).Seconds() / rl.window.Seconds() * rl.limit
		b.tokens = math.Min(rl.limit, b.tokens+refill)
		b.seen = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets that have been idle long enough to be full again.
func (rl *rateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, b := range rl.buckets {
		if now.Sub(b.seen) >= rl.window {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// run sweeps idle buckets once per window until ctx is done.
func (rl *rateLimiter) run(ctx context.Context) {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-ctx.Done():
			return
		}
	}
}

// clientAddr is the host of the connection's remote address. Forwarding headers are
// ignored so a client cannot pick its own bucket.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimit rejects clients that exhausted their bucket for route. It is a no-op without a
// limiter.
func (s *server) rateLimit(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.limiter != nil && !s.limiter.allow(route, clientAddr(r)) {
				writeMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
