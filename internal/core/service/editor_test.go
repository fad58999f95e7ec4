package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
)

func TestEditor_ValidationBlocksDispatch(t *testing.T) {
	api := &stubDispatcher{}
	ed := NewEditor(api, NewsResource, zerolog.Nop())
	ed.Attach()

	err := ed.Submit(context.Background(), domain.NewsForm{Title: "   ", Content: "body"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if api.count() != 0 {
		t.Fatalf("invalid input must not reach the network")
	}
	if ed.State().Error != "titulo is required" {
		t.Fatalf("expected inline message, got %q", ed.State().Error)
	}
}

func TestEditor_MountLoadFailureIsInline(t *testing.T) {
	api := &stubDispatcher{do: func(context.Context, domain.Scope, ports.Request) (ports.Payload, error) {
		return nil, errors.New("connection refused")
	}}
	ed := NewEditor(api, NewsResource, zerolog.Nop())

	if err := ed.Mount(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	st := ed.State()
	if st.Error != "could not load news" || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.Items == nil {
		t.Fatalf("items must stay a usable empty list")
	}
}

func TestEditor_AuthErrorsAreNotShown(t *testing.T) {
	api := &stubDispatcher{do: func(context.Context, domain.Scope, ports.Request) (ports.Payload, error) {
		return nil, &domain.AuthRequiredError{Status: http.StatusUnauthorized}
	}}
	ed := NewEditor(api, EventsResource, zerolog.Nop())

	err := ed.Mount(context.Background())
	if !domain.IsAuthRequired(err) {
		t.Fatalf("expected auth required, got %v", err)
	}
	if ed.State().Error != "" {
		t.Fatalf("auth errors must not become inline text, got %q", ed.State().Error)
	}
}

func TestEditor_BusyRejectsOverlappingSubmit(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	api := &stubDispatcher{do: func(_ context.Context, _ domain.Scope, req ports.Request) (ports.Payload, error) {
		if req.Method == http.MethodPost {
			close(entered)
			<-release
		}
		return ports.Payload(`{"items":[]}`), nil
	}}
	ed := NewEditor(api, NewsResource, zerolog.Nop())
	ed.Attach()

	done := make(chan error, 1)
	go func() {
		done <- ed.Submit(context.Background(), domain.NewsForm{Title: "a", Content: "b"})
	}()
	<-entered

	if err := ed.Submit(context.Background(), domain.NewsForm{Title: "a", Content: "b"}); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if !ed.State().Busy {
		t.Fatalf("state should report the submit in flight")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if ed.State().Busy {
		t.Fatalf("busy flag must clear after completion")
	}
}

func TestEditor_UnmountedViewIgnoresCompletions(t *testing.T) {
	release := make(chan struct{})
	api := &stubDispatcher{do: func(context.Context, domain.Scope, ports.Request) (ports.Payload, error) {
		<-release
		return ports.Payload(`[{"id":1,"titulo":"late"}]`), nil
	}}
	ed := NewEditor(api, NewsResource, zerolog.Nop())
	ed.Attach()

	done := make(chan error, 1)
	go func() { done <- ed.Reload(context.Background()) }()

	ed.Unmount()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := len(ed.State().Items); n != 0 {
		t.Fatalf("unmounted view must not be updated, got %d items", n)
	}
}

func TestEditor_DeleteNeedsConfirmation(t *testing.T) {
	api := &stubDispatcher{do: func(context.Context, domain.Scope, ports.Request) (ports.Payload, error) {
		return ports.Payload(`[{"id":1,"titulo":"a"},{"id":2,"titulo":"b"}]`), nil
	}}
	ed := NewEditor(api, NewsResource, zerolog.Nop())
	if err := ed.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	before := api.count()

	deny := ConfirmFunc(func(context.Context, string) bool { return false })
	if err := ed.Delete(context.Background(), 1, deny); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if api.count() != before {
		t.Fatalf("declined delete must not reach the network")
	}

	if err := ed.Delete(context.Background(), 1, Confirmed); err != nil {
		t.Fatalf("delete: %v", err)
	}
	last := api.calls[len(api.calls)-1]
	if last.Method != http.MethodDelete || last.Path != "/admin/news/1" {
		t.Fatalf("unexpected request %s %s", last.Method, last.Path)
	}
	items := ed.State().Items
	if len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("expected local removal, got %+v", items)
	}
}

func TestEditor_EditThenSubmitUsesPut(t *testing.T) {
	api := &stubDispatcher{do: func(context.Context, domain.Scope, ports.Request) (ports.Payload, error) {
		return ports.Payload(`{"items":[{"id":4,"titulo":"Old","visible":"1","orden":"2"}]}`), nil
	}}
	ed := NewEditor(api, ServicesResource, zerolog.Nop())
	if err := ed.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := ed.Edit(4); err != nil {
		t.Fatalf("edit: %v", err)
	}
	form := ed.State().Form
	if form.Title != "Old" || form.Order != 2 || !form.Visible {
		t.Fatalf("unexpected buffer %+v", form)
	}
	if err := ed.Edit(99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	form.Title = "New"
	if err := ed.Submit(context.Background(), form); err != nil {
		t.Fatalf("submit: %v", err)
	}

	var put *ports.Request
	for i := range api.calls {
		if api.calls[i].Method == http.MethodPut {
			put = &api.calls[i]
		}
	}
	if put == nil || put.Path != "/admin/services/4" {
		t.Fatalf("expected PUT /admin/services/4, got %+v", api.calls)
	}
	body := put.Body.(ports.FormBody).Values
	if body.Get("titulo") != "New" || body.Get("orden") != "2" || body.Get("visible") != "1" {
		t.Fatalf("unexpected form %v", body)
	}
	if _, ok := body["descripcion"]; ok {
		t.Fatalf("empty description must be omitted")
	}
	if st := ed.State(); st.Editing != 0 {
		t.Fatalf("buffer should be discarded after success")
	}
}

func TestEditor_RoundTripAgainstBackend(t *testing.T) {
	h := newHarness(t)
	h.loginRoot(t)
	ctx := context.Background()

	ed := NewEditor(h.api, CoursesResource, zerolog.Nop())
	if err := ed.Mount(ctx); err != nil {
		t.Fatalf("mount: %v", err)
	}

	submitted := domain.CourseForm{
		Title:       "  Diplomado en Redes ",
		Description: "Cisco ",
		Category:    domain.CategoryShort,
		Visible:     true,
		Order:       3,
	}
	if err := ed.Submit(ctx, submitted); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := ed.Submit(ctx, domain.CourseForm{Title: "Maestría", Category: domain.CategorySpecialization}); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	items := ed.State().Items
	if len(items) != 2 {
		t.Fatalf("expected two courses, got %+v", items)
	}
	// orden 0 sorts before orden 3
	first, second := items[0], items[1]
	if first.Title != "Maestría" || second.Title != "Diplomado en Redes" {
		t.Fatalf("unexpected order %q, %q", first.Title, second.Title)
	}
	if second.ID == 0 || second.Description != "Cisco" || second.Category != domain.CategoryShort {
		t.Fatalf("fields not mirrored: %+v", second)
	}
	if !second.Visible.Truthy(false) || second.Order != domain.NewOrder(3) {
		t.Fatalf("flags not mirrored: %+v", second)
	}
	if second.ImageURL != "" {
		t.Fatalf("empty image should be stored as null, got %q", second.ImageURL)
	}

	if err := ed.Delete(ctx, second.ID, Confirmed); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ed.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(ed.State().Items) != 1 {
		t.Fatalf("delete did not reach the backend")
	}
}

func TestEditor_NewsRoundTripAppliesServerDefaults(t *testing.T) {
	h := newHarness(t)
	h.loginRoot(t)
	ctx := context.Background()

	ed := NewEditor(h.api, NewsResource, zerolog.Nop())
	ed.Attach()
	if err := ed.Submit(ctx, domain.NewsForm{Title: "Open day ", Summary: " Doors", Content: "At 9", Visible: true}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	items := ed.State().Items
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	n := items[0]
	if n.ID == 0 || n.PublishedAt == "" {
		t.Fatalf("expected server-assigned id and date, got %+v", n)
	}
	if n.Title != "Open day" || n.Summary != "Doors" || n.Content != "At 9" || !n.Visible.Truthy(false) {
		t.Fatalf("unexpected record %+v", n)
	}
}

// saveThenFailReads accepts every write and fails every read with err.
func saveThenFailReads(err error) *stubDispatcher {
	return &stubDispatcher{do: func(_ context.Context, _ domain.Scope, req ports.Request) (ports.Payload, error) {
		if req.Method == http.MethodGet {
			return nil, err
		}
		return ports.Payload(`{"success":true}`), nil
	}}
}

func TestEditor_SubmitSurvivesFailedReload(t *testing.T) {
	api := saveThenFailReads(errors.New("connection reset"))
	ed := NewEditor(api, NewsResource, zerolog.Nop())
	ed.Attach()

	if err := ed.Submit(context.Background(), domain.NewsForm{Title: "Open day", Content: "At 9"}); err != nil {
		t.Fatalf("a stored change must not be reported as failed: %v", err)
	}
	st := ed.State()
	if st.Error != "could not load news" || st.Busy || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
	if api.count() != 2 {
		t.Fatalf("expected save then reload, got %+v", api.calls)
	}
}

func TestEditor_SubmitReloadLosingSessionIsReturned(t *testing.T) {
	api := saveThenFailReads(&domain.AuthRequiredError{Status: http.StatusUnauthorized})
	ed := NewEditor(api, NewsResource, zerolog.Nop())
	ed.Attach()

	err := ed.Submit(context.Background(), domain.NewsForm{Title: "Open day", Content: "At 9"})
	if !domain.IsAuthRequired(err) {
		t.Fatalf("expected auth required, got %v", err)
	}
	if ed.State().Error != "" {
		t.Fatalf("auth errors must not become inline text, got %q", ed.State().Error)
	}
}
