package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key format: portal:submit:<client_id>:<route>
const lockKeyPrefix = "portal:submit:"

// SubmitLock implements ports.SubmitLock with SET NX and an expiry, so the
// lock holds across every portal replica.
type SubmitLock struct {
	client redis.UniversalClient
}

func NewSubmitLock(client redis.UniversalClient) *SubmitLock {
	return &SubmitLock{client: client}
}

func (l *SubmitLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("submit lock: %w", err)
	}
	return ok, nil
}

func (l *SubmitLock) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, lockKeyPrefix+key).Err()
}
