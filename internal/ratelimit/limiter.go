// Package ratelimit implements a per-identity sliding window rate limiter.
// State lives in process memory only and is not persisted across restarts.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks request timestamps per identity within a sliding window.
// It is safe for concurrent use.
type Limiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewLimiter creates a limiter allowing maxRequests per identity within window.
func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		requests:    make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow reports whether a request from identity may proceed. Expired entries
// for that identity are pruned on every call; when the remaining count is
// below the limit the request is recorded and allowed.
func (l *Limiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.requests[identity][:0]
	for _, t := range l.requests[identity] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.maxRequests {
		l.requests[identity] = kept
		return false
	}

	l.requests[identity] = append(kept, now)
	return true
}

// Prune drops identities whose every recorded request has left the window.
// Allow already prunes per identity; this reclaims map entries for callers
// that want periodic cleanup of idle identities.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for identity, times := range l.requests {
		live := false
		for _, t := range times {
			if t.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.requests, identity)
		}
	}
}
