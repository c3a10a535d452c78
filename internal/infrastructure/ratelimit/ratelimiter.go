// Package ratelimit counts requests per client in fixed time windows.
package ratelimit

import (
	"context"
	"time"
)

// Config bounds how many requests one key may make per window.
type Config struct {
	Requests int
	Window   time.Duration
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}
