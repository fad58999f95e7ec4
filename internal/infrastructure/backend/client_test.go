package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/core/service"
	"github.com/unidet/portal/internal/infrastructure/session"
)

func newClient(t *testing.T, handler http.HandlerFunc) (*Client, *service.SessionStore, *int32) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := service.NewSessionStore(session.NewMemoryStore(), zerolog.Nop())
	var redirects int32
	c := New(sessions, Options{
		BaseURL: srv.URL + "/unidet-api/public/",
		OnAuthRequired: func(context.Context, int) {
			atomic.AddInt32(&redirects, 1)
		},
	})
	return c, sessions, &redirects
}

func TestClient_AdminWithoutTokenNeverReachesNetwork(t *testing.T) {
	var hits int32
	c, _, redirects := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	_, err := c.Do(context.Background(), domain.ScopeAdmin, ports.Request{Path: "/admin/news"})
	if !domain.IsAuthRequired(err) {
		t.Fatalf("expected auth required, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("request must not reach the network")
	}
	if atomic.LoadInt32(redirects) != 1 {
		t.Fatalf("expected one auth-required notification, got %d", *redirects)
	}
}

func TestClient_MissingTokenClearsLeftoverSubject(t *testing.T) {
	var hits int32
	c, sessions, redirects := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})
	ctx := context.Background()
	_ = sessions.Save(ctx, domain.ScopeAdmin, domain.Session{Subject: &domain.Subject{ID: 2, Role: domain.RoleSuperadmin}})

	_, err := c.Do(ctx, domain.ScopeAdmin, ports.Request{Path: "/admin/users"})

	var are *domain.AuthRequiredError
	if !errors.As(err, &are) || are.Status != 0 {
		t.Fatalf("expected AuthRequiredError without status, got %v", err)
	}
	if sub, _ := sessions.Subject(ctx, domain.ScopeAdmin); sub != nil {
		t.Fatalf("expected leftover admin subject cleared, got %+v", sub)
	}
	if atomic.LoadInt32(&hits) != 0 || atomic.LoadInt32(redirects) != 1 {
		t.Fatalf("expected no request and one notification, got %d and %d", hits, *redirects)
	}
}

func TestClient_RejectedTokenClearsSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		c, sessions, redirects := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"token expired"}`))
		})
		ctx := context.Background()
		_ = sessions.Save(ctx, domain.ScopeAdmin, domain.Session{Token: "stale", Subject: &domain.Subject{ID: 2}})

		_, err := c.Do(ctx, domain.ScopeAdmin, ports.Request{Path: "admin/news"})

		var are *domain.AuthRequiredError
		if !errors.As(err, &are) || are.Status != status {
			t.Fatalf("%d: expected AuthRequiredError with status, got %v", status, err)
		}
		if tok, _ := sessions.Token(ctx, domain.ScopeAdmin); tok != "" {
			t.Fatalf("%d: expected admin token cleared, got %q", status, tok)
		}
		if sub, _ := sessions.Subject(ctx, domain.ScopeAdmin); sub != nil {
			t.Fatalf("%d: expected admin subject cleared", status)
		}
		if n := atomic.LoadInt32(redirects); n != 1 {
			t.Fatalf("%d: expected exactly one notification, got %d", status, n)
		}
	}
}

func TestClient_UserScope401IsPlainError(t *testing.T) {
	c, sessions, redirects := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	ctx := context.Background()
	_ = sessions.Save(ctx, domain.ScopeUser, domain.Session{Token: "u"})

	_, err := c.Do(ctx, domain.ScopeUser, ports.Request{Path: "/profile"})
	var apiErr *ports.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected APIError 401, got %v", err)
	}
	if apiErr.Message != "HTTP error 401" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
	if atomic.LoadInt32(redirects) != 0 {
		t.Fatalf("user scope must not trigger the admin notification")
	}
	if tok, _ := sessions.Token(ctx, domain.ScopeUser); tok != "u" {
		t.Fatalf("user session must survive")
	}
}

func TestClient_HeadersAndURL(t *testing.T) {
	var got *http.Request
	var body string
	c, sessions, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	ctx := context.Background()
	_ = sessions.Save(ctx, domain.ScopeAdmin, domain.Session{Token: "abc"})

	_, err := c.Do(ctx, domain.ScopeAdmin, ports.Request{
		Method: http.MethodPost,
		Path:   "admin/courses",
		Body:   ports.JSON(map[string]any{"titulo": "Go"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.URL.Path != "/unidet-api/public/admin/courses" {
		t.Fatalf("unexpected path %q", got.URL.Path)
	}
	if got.Header.Get("Authorization") != "Bearer abc" {
		t.Fatalf("missing bearer token, got %q", got.Header.Get("Authorization"))
	}
	if got.Header.Get("Accept") != "application/json" {
		t.Fatalf("missing accept header")
	}
	if got.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", got.Header.Get("Content-Type"))
	}
	if body != `{"titulo":"Go"}` {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestClient_PublicScopeNeverSendsToken(t *testing.T) {
	var auth string
	c, sessions, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	})
	ctx := context.Background()
	_ = sessions.Save(ctx, domain.ScopeAdmin, domain.Session{Token: "abc"})

	if _, err := c.Do(ctx, domain.ScopePublic, ports.Request{Path: "/news"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "" {
		t.Fatalf("public request carried %q", auth)
	}
}

func TestClient_FormAndMultipartBodies(t *testing.T) {
	var form url.Values
	var file string
	var ct string
	c, _, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		ct = r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/") {
			f, _, err := r.FormFile("image")
			if err == nil {
				b, _ := io.ReadAll(f)
				file = string(b)
			}
			return
		}
		_ = r.ParseForm()
		form = r.PostForm
	})
	ctx := context.Background()

	_, err := c.Do(ctx, domain.ScopePublic, ports.Request{
		Method: http.MethodPost,
		Path:   "/admin/login",
		Body:   ports.Form(url.Values{"email": {"a@b.mx"}, "password": {"x"}}),
	})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if ct != "application/x-www-form-urlencoded" || form.Get("email") != "a@b.mx" {
		t.Fatalf("unexpected form request %q %v", ct, form)
	}

	_, err = c.Do(ctx, domain.ScopePublic, ports.Request{
		Method: http.MethodPost,
		Path:   "/upload",
		Body:   ports.Multipart("image", "a.png", strings.NewReader("PNGDATA")),
	})
	if err != nil {
		t.Fatalf("multipart: %v", err)
	}
	if file != "PNGDATA" {
		t.Fatalf("unexpected uploaded content %q", file)
	}
}

func TestClient_EmptyAndInvalidBodiesBecomeEmptyObject(t *testing.T) {
	for _, raw := range []string{"", "   ", "<html>oops</html>"} {
		c, _, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(raw))
		})
		p, err := c.Do(context.Background(), domain.ScopePublic, ports.Request{Path: "/faq"})
		if err != nil {
			t.Fatalf("%q: unexpected error %v", raw, err)
		}
		if string(p) != "{}" {
			t.Fatalf("%q: expected {}, got %s", raw, p)
		}
	}
}

func TestClient_ServerErrorText(t *testing.T) {
	c, _, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"titulo requerido"}`))
	})
	_, err := c.Do(context.Background(), domain.ScopePublic, ports.Request{Path: "/x"})
	var apiErr *ports.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "titulo requerido" || apiErr.Status != 422 {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if domain.UserMessage(err, "fallback") != "titulo requerido" {
		t.Fatalf("server text should reach the view")
	}
}

func TestClient_ObserveAndNetworkFailure(t *testing.T) {
	var statuses []int
	sessions := service.NewSessionStore(session.NewMemoryStore(), zerolog.Nop())
	c := New(sessions, Options{
		BaseURL: "http://127.0.0.1:1",
		Observe: func(_ domain.Scope, _ string, status int, _ time.Duration) {
			statuses = append(statuses, status)
		},
	})
	_, err := c.Do(context.Background(), domain.ScopePublic, ports.Request{Path: "/news"})
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if domain.UserMessage(err, "could not load") != "could not load" {
		t.Fatalf("transport errors must fall back to the generic message")
	}
	if len(statuses) != 1 || statuses[0] != 0 {
		t.Fatalf("expected one observation with status 0, got %v", statuses)
	}
}

func TestClient_DefaultBaseURL(t *testing.T) {
	c := New(nil, Options{})
	if c.URL("news") != DefaultBaseURL+"/news" {
		t.Fatalf("unexpected url %q", c.URL("news"))
	}
}
