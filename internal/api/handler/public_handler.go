package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unidet/portal/internal/core/service"
)

// PublicHandler serves the read-only views of the public site.
type PublicHandler struct {
	svc *service.PublicService
}

func NewPublicHandler(svc *service.PublicService) *PublicHandler {
	return &PublicHandler{svc: svc}
}

// Register mounts every public view on g.
//
// @Summary      Public views
// @Tags         public
// @Produce      json
// @Param        view  path  string  true  "news, events, courses, services, faq, contact, regulation or admissions"
// @Success      200
// @Failure      502   {object}  map[string]string
// @Router       /api/{view} [get]
func (h *PublicHandler) Register(g *echo.Group) {
	g.GET("/news", view(h.svc.News))
	g.GET("/events", view(h.svc.Events))
	g.GET("/courses", view(h.svc.Courses))
	g.GET("/services", view(h.svc.Services))
	g.GET("/faq", view(h.svc.FAQ))
	g.GET("/contact", view(h.svc.Contact))
	g.GET("/regulation", view(h.svc.Regulation))
	g.GET("/admissions", view(h.svc.Admissions))
}

func view[T any](load func(context.Context) (T, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		v, err := load(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, v)
	}
}
