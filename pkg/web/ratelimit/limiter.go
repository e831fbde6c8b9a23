// Package ratelimit throttles requests per subject or client address.
package ratelimit

import (
	"context"
	"time"
)

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	// Allow records one request for key and reports the window state
	// after it.
	Allow(ctx context.Context, key string) (Info, error)
}

// Info is the state of a key's current window.
type Info struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Allowed   bool
}

func newInfo(limit, count int, resetAt time.Time) Info {
	return Info{
		Limit:     limit,
		Remaining: max(limit-count, 0),
		ResetAt:   resetAt,
		Allowed:   count <= limit,
	}
}
