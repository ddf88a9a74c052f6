// Package ratelimit provides a per-key sliding-window rate limiter for the
// public API surface.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter decides whether a request from key should be allowed. When allowed
// is false, retryAfterSec may be set for the Retry-After header (0 = omit).
type Limiter interface {
	Allow(key string) (allowed bool, retryAfterSec int)
}

// Noop allows every request.
type Noop struct{}

func (Noop) Allow(string) (bool, int) { return true, 0 }

// InMemory is a sliding-window limiter per key. Single-instance only; state
// is not shared across processes.
type InMemory struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	limit   int
	window  time.Duration
	nowFunc func() time.Time
}

// NewInMemory allows up to limit requests per key per window.
func NewInMemory(limit int, window time.Duration) *InMemory {
	return &InMemory{
		entries: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		nowFunc: time.Now,
	}
}

func (r *InMemory) Allow(key string) (allowed bool, retryAfterSec int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.nowFunc()
	cutoff := now.Add(-r.window)

	times := r.entries[key]
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= r.limit {
		r.entries[key] = kept
		retryAfter := kept[0].Add(r.window).Sub(now)
		if retryAfter > 0 {
			retryAfterSec = int(retryAfter.Seconds())
			if retryAfterSec < 1 {
				retryAfterSec = 1
			}
		}
		return false, retryAfterSec
	}
	r.entries[key] = append(kept, now)
	return true, 0
}
