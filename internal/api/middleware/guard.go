package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unidet/portal/internal/api/metrics"
	"github.com/unidet/portal/internal/core/service"
)

// RequireAdmin runs the route guard before an administrator view. Denied
// navigations are answered with a 303 to the verdict location.
func RequireAdmin(guard *service.Guard, route service.Route) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, err := guard.Check(c.Request().Context(), route, c.Request().URL.RequestURI())
			if err != nil {
				return err
			}
			metrics.GuardDecisionsTotal.WithLabelValues(v.Decision.String()).Inc()
			if v.Decision != service.Allow {
				return c.Redirect(http.StatusSeeOther, v.Location)
			}
			return next(c)
		}
	}
}
