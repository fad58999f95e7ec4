package session

import (
	"context"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
)

type storeKey struct{}

// WithStore binds the key/value store of the current client to ctx.
func WithStore(ctx context.Context, kv ports.KeyValueStore) context.Context {
	return context.WithValue(ctx, storeKey{}, kv)
}

// FromContext returns the store bound by WithStore.
func FromContext(ctx context.Context) (ports.KeyValueStore, bool) {
	kv, ok := ctx.Value(storeKey{}).(ports.KeyValueStore)
	return kv, ok && kv != nil
}

// Contextual resolves the store per call from the request context, so one
// set of services can serve every browser the portal talks to.
type Contextual struct{}

func (Contextual) Get(ctx context.Context, key string) (string, bool, error) {
	kv, ok := FromContext(ctx)
	if !ok {
		return "", false, domain.ErrNoSession
	}
	return kv.Get(ctx, key)
}

func (Contextual) Set(ctx context.Context, key, value string) error {
	kv, ok := FromContext(ctx)
	if !ok {
		return domain.ErrNoSession
	}
	return kv.Set(ctx, key, value)
}

func (Contextual) Delete(ctx context.Context, keys ...string) error {
	kv, ok := FromContext(ctx)
	if !ok {
		return domain.ErrNoSession
	}
	return kv.Delete(ctx, keys...)
}
