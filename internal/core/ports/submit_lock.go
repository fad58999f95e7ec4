package ports

import (
	"context"
	"time"
)

// SubmitLock guards a mutation so a repeated submit of the same form is
// refused while the first one is in flight.
type SubmitLock interface {
	// Acquire reports false when key is already held. The hold lapses
	// after ttl even if Release is never called.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
