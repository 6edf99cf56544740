// Package ratelimit implements a fixed-window request counter keyed by
// client. The memory store is per instance; the redis store is shared by
// every replica pointing at the same redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store increments the counter for key in the current window and reports
// the new count and when the window ends. The first hit on a key (or on an
// expired key) opens a new window.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long the caller should wait before the window resets,
// rounded up to whole seconds.
func (r Result) RetryAfter(now time.Time) int {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

type Limiter struct {
	store  Store
	max    int
	window time.Duration
}

func New(store Store, max int, window time.Duration) *Limiter {
	return &Limiter{store: store, max: max, window: window}
}

// Allow counts one request for key. The first max requests in a window are
// allowed; the rest are rejected until the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	count, resetAt, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit incr %s: %w", key, err)
	}

	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
