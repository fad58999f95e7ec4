package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/infrastructure/session"
)

type failingLock struct{}

func (failingLock) Acquire(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}
func (failingLock) Release(context.Context, string) error { return nil }

func TestSubmitLock_RejectsWhileInFlight(t *testing.T) {
	e := echo.New()
	locks := session.NewMemoryLocks()
	mw := SubmitLock(locks, time.Minute, zerolog.Nop())

	var inner error
	outer := mw(func(c echo.Context) error {
		// a second identical submit arrives while the first is running
		req := httptest.NewRequest(http.MethodPost, "/admin/news", nil)
		c2 := e.NewContext(req, httptest.NewRecorder())
		c2.Set(clientIDKey, "c1")
		inner = mw(func(echo.Context) error {
			t.Fatalf("duplicate submit reached the handler")
			return nil
		})(c2)
		return c.NoContent(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/news", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set(clientIDKey, "c1")
	if err := outer(c); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if !errors.Is(inner, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy for the duplicate, got %v", inner)
	}

	// released after completion
	ok, _ := locks.Acquire(context.Background(), "c1:POST /admin/news", time.Minute)
	if !ok {
		t.Fatalf("lock should be released once the first submit finished")
	}
}

func TestSubmitLock_ReadsAndFailuresPassThrough(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		method string
		lock   ports.SubmitLock
	}{
		{http.MethodGet, failingLock{}},
		{http.MethodDelete, failingLock{}},
	} {
		called := false
		h := SubmitLock(tc.lock, time.Minute, zerolog.Nop())(func(echo.Context) error {
			called = true
			return nil
		})
		c := e.NewContext(httptest.NewRequest(tc.method, "/admin/news/1", nil), httptest.NewRecorder())
		if err := h(c); err != nil || !called {
			t.Fatalf("%s: expected pass-through, got called=%v err=%v", tc.method, called, err)
		}
	}
}
