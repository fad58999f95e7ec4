package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/infrastructure/session"
)

func newSessionMiddleware(ns *session.MemoryNamespaces) echo.MiddlewareFunc {
	return ClientSession(ClientSessionConfig{Secret: "secret", Namespaces: ns, Logger: zerolog.Nop()})
}

func TestClientSession_IssuesCookieAndBindsStore(t *testing.T) {
	e := echo.New()
	ns := session.NewMemoryNamespaces()
	req := httptest.NewRequest(http.MethodGet, "/admin/news", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var id string
	handler := newSessionMiddleware(ns)(func(c echo.Context) error {
		id = ClientID(c)
		kv, ok := session.FromContext(c.Request().Context())
		if !ok {
			t.Fatalf("store not bound to the request context")
		}
		return kv.Set(c.Request().Context(), "k", "v")
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if id == "" {
		t.Fatalf("client id not set")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != ClientCookie || !cookies[0].HttpOnly {
		t.Fatalf("expected one http-only client cookie, got %+v", cookies)
	}
	if v, ok, _ := ns.Namespace(id).Get(req.Context(), "k"); !ok || v != "v" {
		t.Fatalf("write did not reach the client namespace")
	}
}

func TestClientSession_ReusesValidCookie(t *testing.T) {
	e := echo.New()
	ns := session.NewMemoryNamespaces()
	signed, err := signClientToken("0b9f6c1e-3f55-4a8e-9a43-6c2b5f0f5e11", []byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: signed})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := newSessionMiddleware(ns)(func(c echo.Context) error {
		if ClientID(c) != "0b9f6c1e-3f55-4a8e-9a43-6c2b5f0f5e11" {
			t.Fatalf("unexpected client id %q", ClientID(c))
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("a valid cookie must not be reissued")
	}
}

func TestClientSession_RejectsForgedCookie(t *testing.T) {
	e := echo.New()
	forged, _ := signClientToken("0b9f6c1e-3f55-4a8e-9a43-6c2b5f0f5e11", []byte("other-secret"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: forged})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := newSessionMiddleware(session.NewMemoryNamespaces())(func(c echo.Context) error {
		if ClientID(c) == "0b9f6c1e-3f55-4a8e-9a43-6c2b5f0f5e11" {
			t.Fatalf("forged identity accepted")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatalf("expected a fresh cookie")
	}
}

func TestParseClientToken_RequiresUUID(t *testing.T) {
	signed, _ := signClientToken("not-a-uuid", []byte("secret"))
	if got := parseClientToken(signed, []byte("secret")); got != "" {
		t.Fatalf("expected rejection, got %q", got)
	}
}
