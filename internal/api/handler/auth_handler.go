package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/service"
)

type AuthHandler struct {
	auth  *service.AuthService
	guard *service.Guard
}

func NewAuthHandler(auth *service.AuthService, guard *service.Guard) *AuthHandler {
	return &AuthHandler{auth: auth, guard: guard}
}

type loginRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
	From     string `json:"from"     form:"from"`
}

type loginView struct {
	From  string `json:"from,omitempty"`
	Error string `json:"error,omitempty"`
}

type sessionResponse struct {
	User     *domain.Subject `json:"user"`
	Elevated bool            `json:"elevated"`
}

// View handles GET /admin.
//
// @Summary      Login view
// @Description  Redirects to the landing view when an administrator session exists.
// @Tags         auth
// @Produce      json
// @Param        from  query     string  false  "Location to return to after login"
// @Success      200   {object}  loginView
// @Success      303
// @Router       /admin [get]
func (h *AuthHandler) View(c echo.Context) error {
	v, err := h.guard.LoginView(c.Request().Context())
	if err != nil {
		return err
	}
	if v.Decision != service.Allow {
		return c.Redirect(http.StatusSeeOther, v.Location)
	}
	return c.JSON(http.StatusOK, loginView{From: c.QueryParam(service.ReturnParam)})
}

// Alias handles GET /admin/login, kept for old bookmarks.
func (h *AuthHandler) Alias(c echo.Context) error {
	target := service.LoginViewPath
	if q := c.QueryString(); q != "" {
		target += "?" + q
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// Login handles POST /admin/login.
//
// @Summary      Administrator login
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email     formData  string  true   "Email"
// @Param        password  formData  string  true   "Password"
// @Param        from      formData  string  false  "Location to return to"
// @Success      303
// @Failure      401  {object}  loginView
// @Failure      422  {object}  loginView
// @Router       /admin/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if req.From == "" {
		req.From = c.QueryParam(service.ReturnParam)
	}

	if _, err := h.auth.Login(c.Request().Context(), req.Email, req.Password); err != nil {
		var le *service.LoginError
		switch {
		case errors.As(err, &le):
			return c.JSON(http.StatusUnauthorized, loginView{From: req.From, Error: le.UserMessage()})
		case errors.Is(err, domain.ErrValidation):
			return c.JSON(http.StatusUnprocessableEntity, loginView{From: req.From, Error: domain.UserMessage(err, "")})
		}
		return err
	}

	return c.Redirect(http.StatusSeeOther, service.ReturnTo(req.From))
}

// Logout handles POST /admin/logout.
//
// @Summary      Administrator logout
// @Tags         auth
// @Success      303
// @Router       /admin/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), domain.ScopeAdmin); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, service.LoginViewPath)
}

// Session handles GET /admin/session.
//
// @Summary      Current administrator
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /admin/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	s, err := h.auth.Current(c.Request().Context(), domain.ScopeAdmin)
	if err != nil {
		return err
	}
	if s == nil {
		return c.JSON(http.StatusOK, sessionResponse{})
	}
	return c.JSON(http.StatusOK, sessionResponse{User: s.Subject, Elevated: s.Subject.Elevated()})
}
