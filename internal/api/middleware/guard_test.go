package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/service"
	"github.com/unidet/portal/internal/infrastructure/session"
)

func guardFor(t *testing.T, s *domain.Session) *service.Guard {
	t.Helper()
	store := service.NewSessionStore(session.NewMemoryStore(), zerolog.Nop())
	if s != nil {
		if err := store.Save(context.Background(), domain.ScopeAdmin, *s); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	return service.NewGuard(store)
}

func TestRequireAdmin_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	guard := guardFor(t, &domain.Session{Token: "t", Subject: &domain.Subject{Role: domain.RoleSuperadmin}})
	called := false
	handler := RequireAdmin(guard, service.Route{Elevated: true})(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequireAdmin_Redirects(t *testing.T) {
	cases := []struct {
		name     string
		session  *domain.Session
		elevated bool
		target   string
		location string
	}{
		{"anonymous", nil, false, "/admin/events?page=2", "/admin?from=%2Fadmin%2Fevents%3Fpage%3D2"},
		{"plain admin on users", &domain.Session{Token: "t", Subject: &domain.Subject{Role: domain.RoleAdmin}}, true, "/admin/users", "/admin/news"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := RequireAdmin(guardFor(t, tc.session), service.Route{Elevated: tc.elevated})(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})
			if err := handler(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusSeeOther {
				t.Fatalf("expected 303, got %d", rec.Code)
			}
			if loc := rec.Header().Get(echo.HeaderLocation); loc != tc.location {
				t.Fatalf("expected location %q, got %q", tc.location, loc)
			}
		})
	}
}
