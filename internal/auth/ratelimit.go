// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package auth

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/quill/internal/metrics"
)

const (
	rateLimiterCleanupInterval = 5 * time.Minute
	rateLimiterIdleTTL         = time.Hour
)

// RateLimiter implements per-IP rate limiting with automatic cleanup
type RateLimiter struct {
	limiters  map[string]*rateLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	endpoint  string
	now       func() time.Time
	stopClean chan struct{}
	stopOnce  sync.Once
}

// rateLimiterEntry wraps a rate limiter with last access time
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter creates a limiter allowing perSecond sustained requests per
// IP with the given burst. endpoint labels rejections in
// api_rate_limit_hits_total. Call Stop to end the cleanup goroutine.
func NewRateLimiter(perSecond float64, burst int, endpoint string) *RateLimiter {
	rl := &RateLimiter{
		limiters:  make(map[string]*rateLimiterEntry),
		rate:      rate.Limit(perSecond),
		burst:     burst,
		endpoint:  endpoint,
		now:       time.Now,
		stopClean: make(chan struct{}),
	}
	go rl.startCleanup(rateLimiterCleanupInterval)
	return rl
}

// Allow checks if a request from the given IP is allowed
func (rl *RateLimiter) Allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	entry, exists := rl.limiters[ip]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429 and the JSON envelope.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			metrics.RecordRateLimitHit(rl.endpoint)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// startCleanup periodically removes stale rate limiters
func (rl *RateLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopClean:
			return
		}
	}
}

// cleanup removes rate limiters that haven't been accessed in the last hour
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := rl.now().Add(-rateLimiterIdleTTL)
	for ip, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, ip)
		}
	}
}

// Size returns the number of tracked IPs.
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopClean) })
}

// clientIP returns the host part of RemoteAddr. chi's RealIP middleware has
// already applied X-Forwarded-For / X-Real-IP when the router uses it.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
