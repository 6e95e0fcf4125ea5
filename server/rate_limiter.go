package server

// Rate limiter utility using a sliding window approach, tracked separately
// for every client key.

import (
	"sync"
	"time"
)

// RateLimiter allows a maximum number of requests per key for a time
// duration.
type RateLimiter struct {
	limit int                    // Maximum number of requests allowed per key
	rate  time.Duration          // Request rate for max requests
	reqs  map[string][]time.Time // Request list per key
	now   func() time.Time
	mu    sync.Mutex
}

// NewRateLimiter creates a new RateLimiter.
func NewRateLimiter(limit int, rate time.Duration) *RateLimiter {
	return &RateLimiter{
		limit: limit,
		rate:  rate,
		reqs:  make(map[string][]time.Time),
		now:   time.Now,
	}
}

// Allow asks the rate limiter if a request for key is allowed.
// Returns true if allowed, false otherwise.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	reqs := expire(r.reqs[key], now.Add(-r.rate))
	if len(reqs) < r.limit {
		r.reqs[key] = append(reqs, now)
		return true
	}
	r.reqs[key] = reqs
	return false
}

// Prune drops every key that has no requests left inside the window.
func (r *RateLimiter) Prune() {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp := r.now().Add(-r.rate)
	for key, reqs := range r.reqs {
		reqs = expire(reqs, exp)
		if len(reqs) == 0 {
			delete(r.reqs, key)
			continue
		}
		r.reqs[key] = reqs
	}
}

// Len returns the number of keys being tracked.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reqs)
}

// expire drops every request at or before exp. reqs is sorted oldest first.
func expire(reqs []time.Time, exp time.Time) []time.Time {
	for i, t := range reqs {
		if t.After(exp) {
			return reqs[i:]
		}
	}
	return reqs[:0]
}
