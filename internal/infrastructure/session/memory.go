// Package session provides process-local implementations of the client
// key/value store that sessions are persisted in.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/unidet/portal/internal/core/ports"
)

// MemoryStore keeps entries in an in-memory map. It is used by tests and by
// the portal when no shared backend is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// MemoryNamespaces hands out one MemoryStore per client identifier.
type MemoryNamespaces struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

func NewMemoryNamespaces() *MemoryNamespaces {
	return &MemoryNamespaces{stores: make(map[string]*MemoryStore)}
}

// Namespace returns the store for clientID, creating it on first use.
func (n *MemoryNamespaces) Namespace(clientID string) ports.KeyValueStore {
	n.mu.Lock()
	defer n.mu.Unlock()

	s, ok := n.stores[clientID]
	if !ok {
		s = NewMemoryStore()
		n.stores[clientID] = s
	}
	return s
}

// MemoryLocks is the in-process submit lock.
type MemoryLocks struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

func NewMemoryLocks() *MemoryLocks {
	return &MemoryLocks{held: make(map[string]time.Time), clock: time.Now}
}

func (l *MemoryLocks) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return false, nil
	}
	l.held[key] = now.Add(ttl)
	return true, nil
}

func (l *MemoryLocks) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, key)
	return nil
}
