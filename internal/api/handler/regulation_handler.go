package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/service"
)

type RegulationHandler struct {
	svc *service.RegulationService
}

func NewRegulationHandler(svc *service.RegulationService) *RegulationHandler {
	return &RegulationHandler{svc: svc}
}

type regulationTextRequest struct {
	ContentHTML string `json:"content_html" form:"content_html"`
}

// regulationResponse is the reloaded document, or only the error text when
// the change was stored but the document could not be read back.
type regulationResponse struct {
	*domain.Regulation
	Error string `json:"error,omitempty"`
}

type newItemRequest struct {
	SectionID int64 `json:"section_id" form:"section_id" validate:"required"`
}

func (h *RegulationHandler) Register(g *echo.Group) {
	g.GET("/regulation", h.Show)
	g.PUT("/regulation", h.SaveText)
	g.POST("/regulation/upload-pdf", h.UploadPDF)
	g.POST("/regulation/sections", h.CreateSection)
	g.PUT("/regulation/sections/:id", h.SaveSection)
	g.DELETE("/regulation/sections/:id", h.DeleteSection)
	g.POST("/regulation/items", h.CreateItem)
	g.PUT("/regulation/items/:id", h.SaveItem)
	g.DELETE("/regulation/items/:id", h.DeleteItem)
}

// Show handles GET /admin/regulation.
//
// @Summary      Regulation document
// @Tags         regulation
// @Produce      json
// @Success      200  {object}  domain.Regulation
// @Router       /admin/regulation [get]
func (h *RegulationHandler) Show(c echo.Context) error {
	doc, err := h.svc.Load(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *RegulationHandler) SaveText(c echo.Context) error {
	var req regulationTextRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return h.respond(c)(h.svc.SaveText(c.Request().Context(), req.ContentHTML))
}

func (h *RegulationHandler) UploadPDF(c echo.Context) error {
	up, done, err := formUpload(c, "pdf")
	if err != nil {
		return err
	}
	defer done()

	path, err := h.svc.UploadPDF(c.Request().Context(), up)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"pdf_path": path})
}

func (h *RegulationHandler) CreateSection(c echo.Context) error {
	return h.respond(c)(h.svc.CreateSection(c.Request().Context()))
}

func (h *RegulationHandler) SaveSection(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var form domain.SectionForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return h.respond(c)(h.svc.SaveSection(c.Request().Context(), id, form))
}

func (h *RegulationHandler) DeleteSection(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	return h.respond(c)(h.svc.DeleteSection(c.Request().Context(), id, confirmation(c)))
}

func (h *RegulationHandler) CreateItem(c echo.Context) error {
	var req newItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	return h.respond(c)(h.svc.CreateItem(c.Request().Context(), req.SectionID))
}

func (h *RegulationHandler) SaveItem(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var form domain.ItemForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return h.respond(c)(h.svc.SaveItem(c.Request().Context(), id, form))
}

func (h *RegulationHandler) DeleteItem(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	return h.respond(c)(h.svc.DeleteItem(c.Request().Context(), id, confirmation(c)))
}

// respond renders the reloaded document every mutation returns.
func (h *RegulationHandler) respond(c echo.Context) func(service.Refreshed[*domain.Regulation], error) error {
	return func(res service.Refreshed[*domain.Regulation], err error) error {
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, regulationResponse{Regulation: res.Data, Error: res.Error})
	}
}
