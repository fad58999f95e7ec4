package ports

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/unidet/portal/internal/core/domain"
)

// Body is a request payload. The dispatcher picks the content type from
// the concrete kind.
type Body interface {
	bodyKind() string
}

// JSONBody is serialised with encoding/json.
type JSONBody struct {
	Value any
}

// FormBody is sent as application/x-www-form-urlencoded.
type FormBody struct {
	Values url.Values
}

// MultipartBody is a single-file multipart/form-data upload.
type MultipartBody struct {
	Field    string
	Filename string
	Content  io.Reader
}

func (JSONBody) bodyKind() string      { return "json" }
func (FormBody) bodyKind() string      { return "form" }
func (MultipartBody) bodyKind() string { return "multipart" }

func JSON(v any) Body             { return JSONBody{Value: v} }
func Form(values url.Values) Body { return FormBody{Values: values} }

func Multipart(field, filename string, content io.Reader) Body {
	return MultipartBody{Field: field, Filename: filename, Content: content}
}

// Request describes one backend call relative to the configured base URL.
type Request struct {
	Method string
	Path   string
	Body   Body
	Header http.Header
}

// APIError is a non-2xx answer from the backend. Message is the server's
// error text, or a status-coded fallback when it sent none.
type APIError struct {
	Message string
	Status  int
	Data    Payload
}

func (e *APIError) Error() string {
	return e.Message
}

// UserMessage exposes the server text to views.
func (e *APIError) UserMessage() string {
	return e.Message
}

// ServerText is the error member of the response body, or "".
func (e *APIError) ServerText() string {
	return e.Data.Text("error")
}

// Dispatcher performs backend requests on behalf of a credential scope.
//
// For domain.ScopeAdmin a missing token, or a 401/403 answer, yields an
// error matching domain.ErrAuthRequired and leaves the administrator
// session cleared.
type Dispatcher interface {
	Do(ctx context.Context, scope domain.Scope, req Request) (Payload, error)
}
