// Package redis keeps per-browser session namespaces and submit locks in
// Redis so several portal replicas share them.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultClientName = "unidet-portal-sessions"
)

// Config selects the Redis database that holds session state.
type Config struct {
	Addr       string
	DB         int
	Timeout    time.Duration
	ClientName string
}

// Connect opens the session store client. The portal refuses to start on a
// session backend it cannot reach, so the first ping must answer within
// Timeout.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}

	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		DB:         cfg.DB,
		ClientName: name,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session store %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Ping backs the session store readiness check.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	return client.Ping(ctx).Err()
}
