package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Memory is a process local Limiter.
type Memory struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemory allows limit requests per key in each window.
func NewMemory(limit int, per time.Duration) (*Memory, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be greater than 0")
	}
	if per <= 0 {
		return nil, errors.New("window must be greater than 0")
	}
	return &Memory{limit: limit, window: per, windows: map[string]*window{}, now: time.Now}, nil
}

// Allow implements Limiter. Expired windows are dropped as keys are seen.
func (m *Memory) Allow(_ context.Context, key string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		for k, old := range m.windows {
			if !now.Before(old.resetAt) {
				delete(m.windows, k)
			}
		}
		w = &window{resetAt: now.Add(m.window)}
		m.windows[key] = w
	}
	w.count++
	return newInfo(m.limit, w.count, w.resetAt), nil
}
