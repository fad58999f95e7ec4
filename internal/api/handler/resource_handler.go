package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/core/service"
)

// ResourceHandler serves one administrator collection. Every request runs a
// fresh editor against the backend; the response body is the editor state
// the view renders.
type ResourceHandler[T domain.Record, F any] struct {
	api ports.Dispatcher
	res service.Resource[T, F]
	log zerolog.Logger
}

func NewResourceHandler[T domain.Record, F any](api ports.Dispatcher, res service.Resource[T, F], log zerolog.Logger) *ResourceHandler[T, F] {
	return &ResourceHandler[T, F]{api: api, res: res, log: log}
}

// Register mounts list, create, update and delete on g, which is rooted at
// the administrator prefix.
func (h *ResourceHandler[T, F]) Register(g *echo.Group) {
	route := strings.TrimPrefix(h.res.Path, service.LoginViewPath)
	g.GET(route, h.List)
	g.POST(route, h.Create)
	g.PUT(route+"/:id", h.Update)
	g.DELETE(route+"/:id", h.Delete)
}

func (h *ResourceHandler[T, F]) editor() *service.Editor[T, F] {
	return service.NewEditor(h.api, h.res, h.log)
}

func (h *ResourceHandler[T, F]) List(c echo.Context) error {
	ed := h.editor()
	if err := ed.Mount(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ed.State())
}

func (h *ResourceHandler[T, F]) Create(c echo.Context) error {
	var form F
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ed := h.editor()
	ed.Attach()
	if err := ed.Submit(c.Request().Context(), form); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ed.State())
}

func (h *ResourceHandler[T, F]) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var form F
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ed := h.editor()
	ed.Attach()
	ed.Select(id)
	if err := ed.Submit(c.Request().Context(), form); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ed.State())
}

// Delete requires ?confirm=true, checked before anything is fetched. The
// row is dropped from the loaded list without a second fetch.
func (h *ResourceHandler[T, F]) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if !confirmed(c) {
		return domain.ErrNotConfirmed
	}

	ed := h.editor()
	ctx := c.Request().Context()
	if err := ed.Mount(ctx); err != nil {
		return err
	}
	if err := ed.Delete(ctx, id, confirmation(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ed.State())
}

// CourseImage handles POST /admin/courses/upload-image.
//
// @Summary      Upload a course image
// @Tags         courses
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Image file"
// @Success      200    {object}  map[string]string
// @Failure      422    {object}  map[string]string
// @Router       /admin/courses/upload-image [post]
func CourseImage(api ports.Dispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		up, done, err := formUpload(c, "image")
		if err != nil {
			return err
		}
		defer done()

		url, err := service.CourseImage(c.Request().Context(), api, up)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]string{"url": url})
	}
}
