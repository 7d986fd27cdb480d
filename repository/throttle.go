package repository

import (
	"context"
	"time"
)

// LoginThrottle counts failed login attempts per key within a fixed window.
type LoginThrottle interface {
	// Failures returns the number of recorded failures for the key in the
	// current window.
	Failures(ctx context.Context, key string) (int64, error)
	// RecordFailure increments the counter and starts the window on the
	// first failure.
	RecordFailure(ctx context.Context, key string, window time.Duration) error
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, key string) error
}
