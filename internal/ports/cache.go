package ports

import (
	"context"
	"time"
)

// RateLimitState is the current counter envelope for a rate-limit key.
type RateLimitState struct {
	Count        int
	BlockedUntil *time.Time
}

// RateLimitStore tracks short-lived request counters for the register and
// login endpoints. It is cache-backed so hot keys never touch the database.
type RateLimitStore interface {
	Get(ctx context.Context, key string) (RateLimitState, error)
	Increment(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (RateLimitState, error)
	Clear(ctx context.Context, key string) error
}
