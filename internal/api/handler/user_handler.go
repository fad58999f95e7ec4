package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/service"
)

// UserHandler serves administrator account management. Routes are mounted
// behind the elevated guard.
type UserHandler struct {
	svc *service.AdminUserService
}

func NewUserHandler(svc *service.AdminUserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type usersResponse struct {
	Items  []domain.AdminUser `json:"items"`
	RootID int64              `json:"root_id"`
	Error  string             `json:"error,omitempty"`
}

type activeRequest struct {
	Active bool `json:"active" form:"active"`
}

type roleRequest struct {
	Role string `json:"role" form:"role" validate:"required"`
}

type passwordRequest struct {
	NewPassword string `json:"new_password" form:"new_password" validate:"required"`
}

type passwordResetResponse struct {
	Notice string `json:"notice"`
	domain.PasswordReset
}

func (h *UserHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id/active", h.SetActive)
	g.PUT("/:id/role", h.SetRole)
	g.POST("/:id/reset-password", h.ResetPassword)
	g.DELETE("/:id", h.Delete)
}

// List handles GET /admin/users.
//
// @Summary      List administrator accounts
// @Tags         users
// @Produce      json
// @Success      200  {object}  usersResponse
// @Router       /admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	return h.respond(c, http.StatusOK, service.Refreshed[[]domain.AdminUser]{Data: users}, err)
}

// Create handles POST /admin/users.
//
// @Summary      Create an administrator account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      domain.AdminUserForm  true  "Account"
// @Success      201   {object}  usersResponse
// @Failure      422   {object}  map[string]string
// @Router       /admin/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var form domain.AdminUserForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	res, err := h.svc.Create(c.Request().Context(), form)
	return h.respond(c, http.StatusCreated, res, err)
}

func (h *UserHandler) SetActive(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req activeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	res, err := h.svc.SetActive(c.Request().Context(), id, req.Active)
	return h.respond(c, http.StatusOK, res, err)
}

func (h *UserHandler) SetRole(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	res, err := h.svc.SetRole(c.Request().Context(), id, req.Role)
	return h.respond(c, http.StatusOK, res, err)
}

// ResetPassword handles POST /admin/users/:id/reset-password. The response
// carries a notice the view shows until dismissed.
//
// @Summary      Set a new password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Account id"
// @Param        body  body      passwordRequest  true  "New password"
// @Success      200   {object}  passwordResetResponse
// @Router       /admin/users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ack, err := h.svc.ResetPassword(c.Request().Context(), id, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, passwordResetResponse{
		Notice:        "Password updated for " + ack.UserEmail,
		PasswordReset: *ack,
	})
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	res, err := h.svc.Delete(c.Request().Context(), id, confirmation(c))
	return h.respond(c, http.StatusOK, res, err)
}

// respond renders the account list. A change that went through keeps its
// status even when the list could not be reloaded; the reason travels in
// the error field.
func (h *UserHandler) respond(c echo.Context, status int, res service.Refreshed[[]domain.AdminUser], err error) error {
	if err != nil {
		return err
	}
	users := res.Data
	if users == nil {
		users = []domain.AdminUser{}
	}
	return c.JSON(status, usersResponse{Items: users, RootID: h.svc.RootID(), Error: res.Error})
}
