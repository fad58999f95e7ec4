package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
)

// Storage keys, shared with every client that ever wrote them.
const (
	userTokenKey    = "unidet_token"
	userSubjectKey  = "unidet_user"
	adminTokenKey   = "unidet_admin_token"
	adminSubjectKey = "unidet_admin_user"
)

type scopeKeys struct {
	token   string
	subject string
}

func keysFor(scope domain.Scope) (scopeKeys, error) {
	switch scope {
	case domain.ScopeUser:
		return scopeKeys{userTokenKey, userSubjectKey}, nil
	case domain.ScopeAdmin:
		return scopeKeys{adminTokenKey, adminSubjectKey}, nil
	default:
		return scopeKeys{}, fmt.Errorf("session scope %q has no storage", scope)
	}
}

// SessionStore implements ports.SessionStore on top of a client-local
// key/value store.
type SessionStore struct {
	kv  ports.KeyValueStore
	log zerolog.Logger
}

// NewSessionStore returns a SessionStore backed by kv.
func NewSessionStore(kv ports.KeyValueStore, log zerolog.Logger) *SessionStore {
	return &SessionStore{kv: kv, log: log}
}

// Save persists the token when non-empty and the subject when non-nil,
// leaving the other half untouched otherwise.
func (s *SessionStore) Save(ctx context.Context, scope domain.Scope, session domain.Session) error {
	keys, err := keysFor(scope)
	if err != nil {
		return err
	}

	if session.Token != "" {
		if err := s.kv.Set(ctx, keys.token, session.Token); err != nil {
			return fmt.Errorf("save %s token: %w", scope, err)
		}
	}
	if session.Subject != nil {
		raw, err := json.Marshal(session.Subject)
		if err != nil {
			return fmt.Errorf("encode %s subject: %w", scope, err)
		}
		if err := s.kv.Set(ctx, keys.subject, string(raw)); err != nil {
			return fmt.Errorf("save %s subject: %w", scope, err)
		}
	}
	return nil
}

func (s *SessionStore) Token(ctx context.Context, scope domain.Scope) (string, error) {
	keys, err := keysFor(scope)
	if err != nil {
		return "", err
	}
	token, _, err := s.kv.Get(ctx, keys.token)
	if err != nil {
		return "", fmt.Errorf("read %s token: %w", scope, err)
	}
	return token, nil
}

// Subject returns the stored subject. A missing or corrupted entry is
// reported as absent, never as an error.
func (s *SessionStore) Subject(ctx context.Context, scope domain.Scope) (*domain.Subject, error) {
	keys, err := keysFor(scope)
	if err != nil {
		return nil, err
	}
	raw, ok, err := s.kv.Get(ctx, keys.subject)
	if err != nil {
		return nil, fmt.Errorf("read %s subject: %w", scope, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var subject *domain.Subject
	if err := json.Unmarshal([]byte(raw), &subject); err != nil {
		s.log.Debug().Err(err).Str("scope", string(scope)).Msg("ignoring unreadable stored subject")
		return nil, nil
	}
	return subject, nil
}

func (s *SessionStore) Clear(ctx context.Context, scope domain.Scope) error {
	keys, err := keysFor(scope)
	if err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, keys.token, keys.subject); err != nil {
		return fmt.Errorf("clear %s session: %w", scope, err)
	}
	return nil
}
