package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/pkg/validate"
)

// Confirmer asks the operator to approve a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed approves every prompt. Used when approval was given up front,
// e.g. a ?confirm=true query or a --yes flag.
var Confirmed Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

// Resource describes one administrator collection: where it lives, how its
// edit buffer is cleaned and serialised, and how the list is ordered.
type Resource[T domain.Record, F any] struct {
	Name string
	Path string

	// Trim returns the buffer that is validated and sent.
	Trim func(F) F
	// Encode serialises a trimmed buffer as JSON or form values.
	Encode func(F) ports.Body
	// ToForm fills the buffer from an existing record.
	ToForm func(T) F
	// Blank is the buffer of a new record. Nil means the zero value.
	Blank func() F
	// Sort orders the list after every load. Nil keeps server order.
	Sort func([]T)
}

func (r Resource[T, F]) itemPath(id int64) string {
	return fmt.Sprintf("%s/%d", r.Path, id)
}

func (r Resource[T, F]) blank() F {
	if r.Blank != nil {
		return r.Blank()
	}
	var f F
	return f
}

// EditorState is the renderable state of an administrator list view.
type EditorState[T domain.Record, F any] struct {
	Items   []T    `json:"items"`
	Editing int64  `json:"editing,omitempty"`
	Form    F      `json:"form"`
	Loading bool   `json:"loading"`
	Busy    bool   `json:"busy"`
	Error   string `json:"error,omitempty"`
}

// Editor runs the list-fetch and form-submit cycle of one resource. Server
// state is the source of truth: every successful mutation re-reads the
// collection, except delete which drops the row locally.
type Editor[T domain.Record, F any] struct {
	api ports.Dispatcher
	res Resource[T, F]
	log zerolog.Logger

	mu      sync.Mutex
	mounted bool
	state   EditorState[T, F]
}

func NewEditor[T domain.Record, F any](api ports.Dispatcher, res Resource[T, F], log zerolog.Logger) *Editor[T, F] {
	return &Editor[T, F]{
		api: api,
		res: res,
		log: log.With().Str("resource", res.Name).Logger(),
		state: EditorState[T, F]{
			Items: []T{},
			Form:  res.blank(),
		},
	}
}

// Mount marks the view visible and loads the collection.
func (e *Editor[T, F]) Mount(ctx context.Context) error {
	e.Attach()
	return e.Reload(ctx)
}

// Attach marks the view visible without loading it. Stateless callers that
// only submit or delete use it instead of Mount.
func (e *Editor[T, F]) Attach() {
	e.mu.Lock()
	e.mounted = true
	e.mu.Unlock()
}

// Unmount detaches the view. Calls still in flight complete but no longer
// change the state.
func (e *Editor[T, F]) Unmount() {
	e.mu.Lock()
	e.mounted = false
	e.mu.Unlock()
}

func (e *Editor[T, F]) Reload(ctx context.Context) error {
	e.update(func(s *EditorState[T, F]) {
		s.Loading = true
		s.Error = ""
	})

	items, err := e.fetch(ctx)

	e.update(func(s *EditorState[T, F]) {
		s.Loading = false
		if err != nil {
			s.Error = domain.UserMessage(err, "could not load "+e.res.Name)
			return
		}
		s.Items = items
	})
	if err != nil {
		e.logFailure(err, "load")
	}
	return err
}

func (e *Editor[T, F]) fetch(ctx context.Context) ([]T, error) {
	payload, err := e.api.Do(ctx, domain.ScopeAdmin, ports.Request{Method: http.MethodGet, Path: e.res.Path})
	if err != nil {
		return nil, err
	}
	items, err := ports.DecodeList[T](payload)
	if err != nil {
		return nil, err
	}
	if e.res.Sort != nil {
		e.res.Sort(items)
	}
	return items, nil
}

// Edit selects the record id and loads it into the buffer.
func (e *Editor[T, F]) Edit(id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, it := range e.state.Items {
		if it.RecordID() == id {
			e.state.Editing = id
			e.state.Form = e.res.ToForm(it)
			e.state.Error = ""
			return nil
		}
	}
	return fmt.Errorf("%s %d: %w", e.res.Name, id, domain.ErrNotFound)
}

// Select targets id for the next Submit without requiring it to be loaded.
func (e *Editor[T, F]) Select(id int64) {
	e.mu.Lock()
	e.state.Editing = id
	e.mu.Unlock()
}

// Reset discards the buffer and the selection.
func (e *Editor[T, F]) Reset() {
	e.update(func(s *EditorState[T, F]) {
		s.Editing = 0
		s.Form = e.res.blank()
		s.Error = ""
	})
}

// Submit validates form and creates a record, or updates the selected one.
// A submit while another is in flight is rejected with ErrBusy.
func (e *Editor[T, F]) Submit(ctx context.Context, form F) error {
	e.mu.Lock()
	if e.state.Busy {
		e.mu.Unlock()
		return domain.ErrBusy
	}
	editing := e.state.Editing
	e.state.Form = form

	trimmed := form
	if e.res.Trim != nil {
		trimmed = e.res.Trim(form)
	}
	if err := validate.Struct(trimmed); err != nil {
		e.state.Error = domain.UserMessage(err, "invalid input")
		e.mu.Unlock()
		e.log.Debug().Err(err).Msg("rejected before dispatch")
		return err
	}
	e.state.Busy = true
	e.state.Error = ""
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.state.Busy = false
		e.mu.Unlock()
	}()

	req := ports.Request{Method: http.MethodPost, Path: e.res.Path, Body: e.res.Encode(trimmed)}
	if editing != 0 {
		req.Method = http.MethodPut
		req.Path = e.res.itemPath(editing)
	}

	if _, err := e.api.Do(ctx, domain.ScopeAdmin, req); err != nil {
		e.update(func(s *EditorState[T, F]) {
			s.Error = domain.UserMessage(err, "could not save "+e.res.Name)
		})
		e.logFailure(err, "save")
		return err
	}

	// The save went through. A failed refresh stays in state.Error; only a
	// lost administrator session is reported to the caller.
	e.Reset()
	if err := e.Reload(ctx); err != nil && domain.IsAuthRequired(err) {
		return err
	}
	return nil
}

// Delete removes id after confirmation and drops it from the local list.
func (e *Editor[T, F]) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm(ctx, fmt.Sprintf("Delete this %s?", e.res.Name)) {
		return domain.ErrNotConfirmed
	}

	if _, err := e.api.Do(ctx, domain.ScopeAdmin, ports.Request{Method: http.MethodDelete, Path: e.res.itemPath(id)}); err != nil {
		e.update(func(s *EditorState[T, F]) {
			s.Error = domain.UserMessage(err, "could not delete "+e.res.Name)
		})
		e.logFailure(err, "delete")
		return err
	}

	e.update(func(s *EditorState[T, F]) {
		kept := make([]T, 0, len(s.Items))
		for _, it := range s.Items {
			if it.RecordID() != id {
				kept = append(kept, it)
			}
		}
		s.Items = kept
		if s.Editing == id {
			s.Editing = 0
			s.Form = e.res.blank()
		}
	})
	return nil
}

// State returns a snapshot of the view state.
func (e *Editor[T, F]) State() EditorState[T, F] {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	s.Items = append([]T(nil), e.state.Items...)
	return s
}

// update applies fn while the view is mounted.
func (e *Editor[T, F]) update(fn func(*EditorState[T, F])) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.mounted {
		return
	}
	fn(&e.state)
}

func (e *Editor[T, F]) logFailure(err error, op string) {
	switch {
	case domain.IsAuthRequired(err):
		e.log.Info().Str("op", op).Msg("administrator session required")
	default:
		e.log.Error().Err(err).Str("op", op).Msg("request failed")
	}
}
