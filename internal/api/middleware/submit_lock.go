package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/api/metrics"
	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
)

// SubmitLock refuses a mutation with domain.ErrBusy while the same client
// already has the same method and path in flight. Reads pass through.
// A failing lock backend lets the request through.
func SubmitLock(lock ports.SubmitLock, ttl time.Duration, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			key := ClientID(c) + ":" + req.Method + " " + req.URL.Path
			ok, err := lock.Acquire(req.Context(), key, ttl)
			if err != nil {
				log.Error().Err(err).Str("key", key).Msg("submit lock unavailable")
				return next(c)
			}
			if !ok {
				metrics.SubmitLockRejectionsTotal.Inc()
				log.Debug().Str("key", key).Msg("duplicate submit rejected")
				return domain.ErrBusy
			}
			defer func() {
				if err := lock.Release(context.WithoutCancel(req.Context()), key); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("submit lock release failed")
				}
			}()
			return next(c)
		}
	}
}
