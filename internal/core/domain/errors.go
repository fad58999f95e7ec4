package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired means the administrator session is missing or was
	// rejected. Views must not render it as an inline failure; the caller
	// navigates to the login view instead.
	ErrAuthRequired = errors.New("not authenticated")

	ErrValidation    = errors.New("validation failed")
	ErrRuleViolation = errors.New("operation not allowed")
	ErrNotConfirmed  = errors.New("confirmation required")
	ErrBusy          = errors.New("operation already in progress")
	ErrNoSession     = errors.New("no session")
	ErrNotFound      = errors.New("record not found")
)

// AuthRequiredError carries the HTTP status that invalidated the session,
// or zero when no token was stored.
type AuthRequiredError struct {
	Status int
}

func (e *AuthRequiredError) Error() string {
	if e.Status == 0 {
		return ErrAuthRequired.Error()
	}
	return fmt.Sprintf("%s (status %d)", ErrAuthRequired, e.Status)
}

func (e *AuthRequiredError) Is(target error) bool {
	return target == ErrAuthRequired
}

// ValidationError is an input problem detected before any request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RuleError is a business rule rejection shown as a blocking notice.
type RuleError struct {
	Message string
}

func NewRuleError(msg string) *RuleError {
	return &RuleError{Message: msg}
}

func (e *RuleError) Error() string {
	return e.Message
}

func (e *RuleError) Is(target error) bool {
	return target == ErrRuleViolation
}

// IsAuthRequired reports whether err is the not-authenticated signal.
func IsAuthRequired(err error) bool {
	return errors.Is(err, ErrAuthRequired)
}

// UserMessage returns the text a view shows for err. Authentication errors
// yield "" because they are handled by navigation. Errors that do not carry
// their own user-facing text fall back to fallback.
func UserMessage(err error, fallback string) string {
	if err == nil || IsAuthRequired(err) {
		return ""
	}

	var msg interface{ UserMessage() string }
	if errors.As(err, &msg) {
		if m := msg.UserMessage(); m != "" {
			return m
		}
		return fallback
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var re *RuleError
	if errors.As(err, &re) {
		return re.Message
	}
	if errors.Is(err, ErrBusy) || errors.Is(err, ErrNotConfirmed) {
		return err.Error()
	}
	return fallback
}
