package service

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/infrastructure/backend"
	"github.com/unidet/portal/internal/infrastructure/session"
	"github.com/unidet/portal/internal/mockapi"
)

const (
	rootEmail    = "root@unidet.mx"
	rootPassword = "root-pass"
)

// stubDispatcher records every request and answers through do.
type stubDispatcher struct {
	mu    sync.Mutex
	calls []ports.Request
	do    func(ctx context.Context, scope domain.Scope, req ports.Request) (ports.Payload, error)
}

func (s *stubDispatcher) Do(ctx context.Context, scope domain.Scope, req ports.Request) (ports.Payload, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.do == nil {
		return ports.Payload("{}"), nil
	}
	return s.do(ctx, scope, req)
}

func (s *stubDispatcher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// harness runs the services against the in-memory backend.
type harness struct {
	api      *backend.Client
	sessions *SessionStore
	auth     *AuthService
	base     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv, err := mockapi.New(mockapi.Options{
		Prefix:       "/unidet-api/public",
		JWTSecret:    "test-secret",
		RootName:     "Root",
		RootEmail:    rootEmail,
		RootPassword: rootPassword,
		BcryptCost:   bcrypt.MinCost,
		Logger:       zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("mockapi: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	sessions := NewSessionStore(session.NewMemoryStore(), zerolog.Nop())
	base := ts.URL + "/unidet-api/public"
	api := backend.New(sessions, backend.Options{BaseURL: base})
	return &harness{
		api:      api,
		sessions: sessions,
		auth:     NewAuthService(api, sessions, zerolog.Nop()),
		base:     base,
	}
}

func (h *harness) loginRoot(t *testing.T) {
	t.Helper()
	if _, err := h.auth.Login(context.Background(), rootEmail, rootPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
}
