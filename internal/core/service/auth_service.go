package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
)

const (
	loginPath = "/admin/login"

	loginFailedMessage = "login failed"
)

// LoginError is a rejected login, carrying the text shown on the form.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string       { return e.Message }
func (e *LoginError) UserMessage() string { return e.Message }
func (e *LoginError) Unwrap() error       { return e.Err }

// AuthService exchanges administrator credentials for a session and exposes
// the stored sessions.
type AuthService struct {
	api      ports.Dispatcher
	sessions ports.SessionStore
	log      zerolog.Logger
}

func NewAuthService(api ports.Dispatcher, sessions ports.SessionStore, log zerolog.Logger) *AuthService {
	return &AuthService{api: api, sessions: sessions, log: log}
}

// Login posts the credentials form-encoded and stores the returned token and
// subject under the administrator scope. The end-user scope is untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email", "email and password are required")
	}

	payload, err := s.api.Do(ctx, domain.ScopePublic, ports.Request{
		Method: http.MethodPost,
		Path:   loginPath,
		Body:   ports.Form(url.Values{"email": {email}, "password": {password}}),
	})
	if err != nil {
		var apiErr *ports.APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.ServerText()
			if msg == "" {
				msg = loginFailedMessage
			}
			s.log.Info().Str("email", email).Int("status", apiErr.Status).Msg("login rejected")
			return nil, &LoginError{Message: msg, Err: err}
		}
		return nil, err
	}

	var session domain.Session
	if err := payload.Decode(&session); err != nil {
		return nil, &LoginError{Message: loginFailedMessage, Err: err}
	}
	if session.Token == "" {
		return nil, &LoginError{Message: loginFailedMessage, Err: errors.New("login response carried no token")}
	}

	if err := s.sessions.Save(ctx, domain.ScopeAdmin, session); err != nil {
		return nil, err
	}
	s.log.Info().Str("email", email).Msg("administrator logged in")
	return &session, nil
}

// Logout forgets the session held for scope.
func (s *AuthService) Logout(ctx context.Context, scope domain.Scope) error {
	return s.sessions.Clear(ctx, scope)
}

// Current returns the stored session for scope, or nil when no token is held.
func (s *AuthService) Current(ctx context.Context, scope domain.Scope) (*domain.Session, error) {
	token, err := s.sessions.Token(ctx, scope)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	subject, err := s.sessions.Subject(ctx, scope)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: token, Subject: subject}, nil
}
