package ports

import "context"

// KeyValueStore is the client-local persistence adapter sessions live in.
// Implementations scope their keys to a single client.
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Namespaces hands out the store of one client.
type Namespaces interface {
	Namespace(clientID string) KeyValueStore
}
