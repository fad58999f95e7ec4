package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unidet/portal/internal/core/ports"
)

// DefaultSessionTTL is how long an idle browser keeps its session entries.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Key format: portal:session:<client_id>, one hash per client.
const sessionKeyPrefix = "portal:session:"

// KVStore keeps the entries of one client in a Redis hash. Every write
// extends the hash expiry.
type KVStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

func (s *KVStore) Get(ctx context.Context, field string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get: %w", err)
	}
	return v, true, nil
}

func (s *KVStore) Set(ctx context.Context, field, value string) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.key, field, value)
		p.Expire(ctx, s.key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key, fields...).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// Namespaces hands out per-client KVStores sharing one connection.
type Namespaces struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewNamespaces wraps client. A non-positive ttl uses DefaultSessionTTL.
func NewNamespaces(client redis.UniversalClient, ttl time.Duration) *Namespaces {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Namespaces{client: client, ttl: ttl}
}

func (n *Namespaces) Namespace(clientID string) ports.KeyValueStore {
	return &KVStore{client: n.client, key: sessionKeyPrefix + clientID, ttl: n.ttl}
}
