package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const sweepProbability = 0.01

type window struct {
	count   int
	resetAt time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	now  func() time.Time
	roll func() float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
		roll:    rand.Float64,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, d time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.roll() < sweepProbability {
		s.sweepLocked(now)
	}

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		s.windows[key] = w
	}
	w.count++

	return w.count, w.resetAt, nil
}

// sweep drops every window that has already reset.
func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
		}
	}
}

func (s *MemoryStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
