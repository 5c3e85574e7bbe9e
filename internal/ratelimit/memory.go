package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int64
}

// MemoryLimiter is an in-process fixed-window limiter. Counters are lost on
// restart and are not shared between instances.
type MemoryLimiter struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]window
	lastPrune time.Time
}

func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]window),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()
	start := windowStart(now, m.period)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune(start)

	w := m.windows[key]
	if !w.start.Equal(start) {
		w = window{start: start}
	}
	w.count++
	m.windows[key] = w

	return decide(w.count, m.limit, start, m.period), nil
}

// Len reports how many keys are currently tracked.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// prune drops counters from earlier windows, at most once per window.
func (m *MemoryLimiter) prune(current time.Time) {
	if m.lastPrune.Equal(current) {
		return
	}
	for k, w := range m.windows {
		if w.start.Before(current) {
			delete(m.windows, k)
		}
	}
	m.lastPrune = current
}
