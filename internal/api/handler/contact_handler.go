package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/service"
)

type ContactHandler struct {
	svc *service.ContactService
}

func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func (h *ContactHandler) Register(g *echo.Group) {
	g.GET("/contact", h.Show)
	g.PUT("/contact", h.Save)
	g.POST("/contact/upload-image", h.UploadHero)
}

// Show handles GET /admin/contact.
//
// @Summary      Contact profile
// @Tags         contact
// @Produce      json
// @Success      200  {object}  domain.Contact
// @Router       /admin/contact [get]
func (h *ContactHandler) Show(c echo.Context) error {
	contact, err := h.svc.Load(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

// Save handles PUT /admin/contact. The hero image is not part of the body.
//
// @Summary      Save the contact profile
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Contact  true  "Contact profile"
// @Success      200   {object}  domain.Contact
// @Router       /admin/contact [put]
func (h *ContactHandler) Save(c echo.Context) error {
	var in domain.Contact
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	saved, err := h.svc.Save(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *ContactHandler) UploadHero(c echo.Context) error {
	up, done, err := formUpload(c, "image")
	if err != nil {
		return err
	}
	defer done()

	url, err := h.svc.UploadHero(c.Request().Context(), up)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"image_url": url})
}
