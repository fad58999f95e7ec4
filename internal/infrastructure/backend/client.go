// Package backend implements ports.Dispatcher over HTTP against the REST
// backend that owns every record the portal shows or edits.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
)

// DefaultBaseURL is the local development backend.
const DefaultBaseURL = "http://localhost:8080/unidet-api/public"

// Options configures a Client. Zero values are usable.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger

	// OnAuthRequired runs once for every administrator request that ends in
	// the not-authenticated signal. status is 0 when no token was stored.
	OnAuthRequired func(ctx context.Context, status int)

	// Observe receives every completed round trip. status is 0 on transport
	// failure.
	Observe func(scope domain.Scope, method string, status int, elapsed time.Duration)
}

// Client dispatches requests for the sessions held in a ports.SessionStore.
type Client struct {
	base     string
	http     *http.Client
	sessions ports.SessionStore
	log      zerolog.Logger

	onAuthRequired func(ctx context.Context, status int)
	observe        func(scope domain.Scope, method string, status int, elapsed time.Duration)
}

func New(sessions ports.SessionStore, opts Options) *Client {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		base:           strings.TrimRight(base, "/"),
		http:           hc,
		sessions:       sessions,
		log:            opts.Logger,
		onAuthRequired: opts.OnAuthRequired,
		observe:        opts.Observe,
	}
}

// BaseURL returns the origin every path is resolved against.
func (c *Client) BaseURL() string {
	return c.base
}

// URL joins path onto the base, adding the leading slash when missing.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base + path
}

func (c *Client) Do(ctx context.Context, scope domain.Scope, req ports.Request) (ports.Payload, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var token string
	if scope != domain.ScopePublic {
		t, err := c.sessions.Token(ctx, scope)
		if err != nil {
			return nil, err
		}
		token = t
	}
	if scope == domain.ScopeAdmin && token == "" {
		// A subject left without its token is stale; drop it too.
		if err := c.sessions.Clear(ctx, domain.ScopeAdmin); err != nil {
			c.log.Error().Err(err).Msg("clearing incomplete administrator session failed")
		}
		return nil, c.authRequired(ctx, 0)
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", method, req.Path, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.URL(req.Path), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.record(scope, method, 0, start)
		c.log.Error().Err(err).Str("method", method).Str("path", req.Path).Str("scope", string(scope)).Msg("backend request failed")
		return nil, fmt.Errorf("%s %s: %w", method, req.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.record(scope, method, resp.StatusCode, start)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", req.Path).Str("scope", string(scope)).Msg("reading backend response failed")
		return nil, fmt.Errorf("%s %s: read body: %w", method, req.Path, err)
	}
	payload := normalize(raw)

	if scope == domain.ScopeAdmin && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		if err := c.sessions.Clear(ctx, domain.ScopeAdmin); err != nil {
			c.log.Error().Err(err).Msg("clearing rejected administrator session failed")
		}
		return nil, c.authRequired(ctx, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := payload.Text("error")
		if msg == "" {
			msg = fmt.Sprintf("HTTP error %d", resp.StatusCode)
		}
		c.log.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", req.Path).Msg(msg)
		return nil, &ports.APIError{Message: msg, Status: resp.StatusCode, Data: payload}
	}

	return payload, nil
}

func (c *Client) authRequired(ctx context.Context, status int) error {
	c.log.Info().Int("status", status).Msg("administrator session required")
	if c.onAuthRequired != nil {
		c.onAuthRequired(ctx, status)
	}
	return &domain.AuthRequiredError{Status: status}
}

func (c *Client) record(scope domain.Scope, method string, status int, start time.Time) {
	if c.observe != nil {
		c.observe(scope, method, status, time.Since(start))
	}
}

// normalize turns empty or non-JSON bodies into an empty object.
func normalize(raw []byte) ports.Payload {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return ports.Payload("{}")
	}
	return ports.Payload(trimmed)
}

func encodeBody(b ports.Body) (io.Reader, string, error) {
	switch body := b.(type) {
	case nil:
		return nil, "", nil
	case ports.JSONBody:
		raw, err := json.Marshal(body.Value)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(raw), "application/json", nil
	case ports.FormBody:
		values := body.Values
		if values == nil {
			values = url.Values{}
		}
		return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", nil
	case ports.MultipartBody:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile(body.Field, body.Filename)
		if err != nil {
			return nil, "", err
		}
		if body.Content != nil {
			if _, err := io.Copy(part, body.Content); err != nil {
				return nil, "", err
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	default:
		return nil, "", fmt.Errorf("unsupported body %T", b)
	}
}
