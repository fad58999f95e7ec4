package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/core/service"
)

type stubAPI struct {
	calls []ports.Request
	reply ports.Payload
	fail  map[string]error
}

func (s *stubAPI) Do(_ context.Context, scope domain.Scope, req ports.Request) (ports.Payload, error) {
	if scope != domain.ScopeAdmin {
		return nil, errors.New("unexpected scope " + string(scope))
	}
	s.calls = append(s.calls, req)
	if err := s.fail[req.Method]; err != nil {
		return nil, err
	}
	return s.reply, nil
}

func newContext(method, target string, body *bytes.Buffer, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLiveness(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health", nil, "")
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("liveness: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]Check{
		"backend": func(context.Context) error { return nil },
		"mongo":   func(context.Context) error { return errors.New("server selection timeout") },
	})
	c, rec := newContext(http.MethodGet, "/health/ready", nil, "")
	if err := h.Readiness(c); err != nil {
		t.Fatalf("readiness: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var got readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Dependencies["backend"].Status != "ok" || got.Dependencies["mongo"].Error != "server selection timeout" {
		t.Fatalf("unexpected dependencies %+v", got.Dependencies)
	}

	c, rec = newContext(http.MethodGet, "/health/ready", nil, "")
	if err := NewHealthDependenciesHandler(nil).Readiness(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("no checks should be ready, got %d %v", rec.Code, err)
	}
}

func TestIDParam(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3", ""} {
		c, _ := newContext(http.MethodDelete, "/admin/news/"+raw, nil, "")
		c.SetParamNames("id")
		c.SetParamValues(raw)
		if _, err := idParam(c); err == nil {
			t.Fatalf("%q should be rejected", raw)
		}
	}
}

func TestConfirmation(t *testing.T) {
	c, _ := newContext(http.MethodDelete, "/admin/news/1?confirm=true", nil, "")
	if !confirmation(c).Confirm(context.Background(), "Delete?") {
		t.Fatalf("confirm=true should approve")
	}
	c, _ = newContext(http.MethodDelete, "/admin/news/1?confirm=yes", nil, "")
	if confirmation(c).Confirm(context.Background(), "Delete?") {
		t.Fatalf("only confirm=true approves")
	}
}

func TestAuthAlias_KeepsQuery(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/admin/login?from=%2Fadmin%2Fevents", nil, "")
	if err := (&AuthHandler{}).Alias(c); err != nil {
		t.Fatalf("alias: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin?from=%2Fadmin%2Fevents" {
		t.Fatalf("unexpected redirect %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestCourseImage(t *testing.T) {
	api := &stubAPI{reply: ports.Payload(`{"url":"/uploads/courses/a.png"}`)}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("image", "a.png")
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n0000000000000000"))
	_ = w.Close()

	c, rec := newContext(http.MethodPost, "/admin/courses/upload-image", &body, w.FormDataContentType())
	if err := CourseImage(api)(c); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("/uploads/courses/a.png")) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if len(api.calls) != 1 || api.calls[0].Path != "/admin/courses/upload-image" {
		t.Fatalf("unexpected calls %+v", api.calls)
	}
}

func TestCourseImage_MissingFile(t *testing.T) {
	api := &stubAPI{}
	c, _ := newContext(http.MethodPost, "/admin/courses/upload-image", nil, "")
	err := CourseImage(api)(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("nothing should be sent, got %+v", api.calls)
	}
}

func TestResourceCreate_StoredDespiteFailedReload(t *testing.T) {
	api := &stubAPI{
		reply: ports.Payload(`{"success":true,"id":9}`),
		fail:  map[string]error{http.MethodGet: errors.New("connection reset")},
	}
	h := NewResourceHandler(api, service.NewsResource, zerolog.Nop())
	body := bytes.NewBufferString(`{"titulo":"Open day","contenido":"At 9"}`)
	c, rec := newContext(http.MethodPost, "/admin/news", body, echo.MIMEApplicationJSON)

	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var got struct {
		Items []json.RawMessage `json:"items"`
		Error string            `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Error == "" {
		t.Fatalf("expected the reload failure inline, got %s", rec.Body.String())
	}
	if len(api.calls) != 2 || api.calls[0].Method != http.MethodPost || api.calls[1].Method != http.MethodGet {
		t.Fatalf("expected POST then GET, got %+v", api.calls)
	}
}

func TestResourceDelete_UnconfirmedSkipsBackend(t *testing.T) {
	api := &stubAPI{reply: ports.Payload(`{"items":[]}`)}
	h := NewResourceHandler(api, service.NewsResource, zerolog.Nop())
	c, _ := newContext(http.MethodDelete, "/admin/news/3", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := h.Delete(c); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("an unconfirmed delete must not reach the backend, got %+v", api.calls)
	}

	c, rec := newContext(http.MethodDelete, "/admin/news/3?confirm=true", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := h.Delete(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("confirmed delete: %d %v", rec.Code, err)
	}
	if len(api.calls) != 2 || api.calls[1].Method != http.MethodDelete || api.calls[1].Path != "/admin/news/3" {
		t.Fatalf("expected load then DELETE, got %+v", api.calls)
	}
}

func TestUserCreate_StoredDespiteFailedReload(t *testing.T) {
	api := &stubAPI{
		reply: ports.Payload(`{"success":true}`),
		fail:  map[string]error{http.MethodGet: errors.New("connection reset")},
	}
	h := NewUserHandler(service.NewAdminUserService(api, 1, zerolog.Nop()))
	body := bytes.NewBufferString(`{"name":"Ana","email":"ana@unidet.mx","password":"secret"}`)
	c, rec := newContext(http.MethodPost, "/admin/users", body, echo.MIMEApplicationJSON)

	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	var got usersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusCreated || got.Error == "" || got.Items == nil {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
