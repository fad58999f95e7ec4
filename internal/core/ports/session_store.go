package ports

import (
	"context"

	"github.com/unidet/portal/internal/core/domain"
)

// SessionStore holds the end-user and administrator credential pairs of one
// client. The two scopes never share a token.
type SessionStore interface {
	Save(ctx context.Context, scope domain.Scope, session domain.Session) error
	// Token returns "" when no token is stored for scope.
	Token(ctx context.Context, scope domain.Scope) (string, error)
	// Subject returns nil when the stored subject is missing or unreadable.
	Subject(ctx context.Context, scope domain.Scope) (*domain.Subject, error)
	Clear(ctx context.Context, scope domain.Scope) error
}
