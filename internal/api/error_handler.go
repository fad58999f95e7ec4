package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/core/service"
)

// errorResponse is the canonical error envelope for all API errors. Notice
// is set for rule violations the view shows as a blocking message.
type errorResponse struct {
	Error  string `json:"error"`
	Notice string `json:"notice,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Sends administrator requests that lost their session to the login view.
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if domain.IsAuthRequired(err) && strings.HasPrefix(c.Request().URL.Path, service.LoginViewPath) {
			_ = c.Redirect(http.StatusSeeOther, service.LoginLocation(c.Request().URL.RequestURI()))
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var apiErr *ports.APIError
	switch {
	case domain.IsAuthRequired(err):
		return http.StatusUnauthorized, errorResponse{Error: "authentication required"}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, errorResponse{Error: domain.UserMessage(err, err.Error())}
	case errors.Is(err, domain.ErrRuleViolation):
		msg := domain.UserMessage(err, err.Error())
		return http.StatusConflict, errorResponse{Error: msg, Notice: msg}
	case errors.Is(err, domain.ErrNotConfirmed):
		return http.StatusPreconditionRequired, errorResponse{Error: "confirmation required"}
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, errorResponse{Error: "operation already in progress"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "record not found"}
	case errors.As(err, &apiErr):
		return apiErr.Status, errorResponse{Error: apiErr.UserMessage()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusBadGateway, errorResponse{Error: "request failed"}
}
