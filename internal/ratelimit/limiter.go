// Package ratelimit implements a process-local fixed-window request counter
// keyed by client identity.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	// Count is the number of requests seen in the current window, this one
	// included.
	Count int
	// ResetAt is when the current window rolls over.
	ResetAt time.Time
	// RetryAfter is the wait until ResetAt, rounded up to whole seconds.
	// Zero when the request is allowed.
	RetryAfter time.Duration
}

// RetryAfterSeconds renders RetryAfter for the Retry-After header.
func (d Decision) RetryAfterSeconds() int {
	return int(d.RetryAfter / time.Second)
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter allows at most limit requests per key in each window.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

// Option tweaks a Limiter at construction.
type Option func(*Limiter)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New builds a Limiter for limit requests per period. A limit below 1 is
// treated as 1.
func New(limit int, period time.Duration, opts ...Option) *Limiter {
	if limit < 1 {
		limit = 1
	}
	l := &Limiter{
		entries: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow counts one request for key and reports whether it may proceed.
//
// A missing or expired window is replaced by a fresh one with count 1.
// Otherwise the count is incremented and the request is refused once it
// exceeds the limit.
func (l *Limiter) Allow(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.entries[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(l.period)}
		l.entries[key] = w
		return Decision{Allowed: true, Count: 1, ResetAt: w.resetAt}
	}

	w.count++
	d := Decision{Allowed: w.count <= l.limit, Count: w.count, ResetAt: w.resetAt}
	if !d.Allowed {
		d.RetryAfter = ceilSeconds(w.resetAt.Sub(now))
	}
	return d
}

// Sweep drops windows that have already rolled over and returns how many
// were removed. A dropped key starts a fresh window on its next request,
// exactly as if the entry had been kept.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, w := range l.entries {
		if !now.Before(w.resetAt) {
			delete(l.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RunJanitor calls Sweep every interval until ctx is done.
func (l *Limiter) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}

func ceilSeconds(d time.Duration) time.Duration {
	secs := math.Ceil(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}
