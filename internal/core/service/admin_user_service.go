package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/pkg/validate"
)

const usersPath = "/admin/users"

// DefaultRootAdminID is the account created with the backend. It always
// stays an active superadmin.
const DefaultRootAdminID int64 = 1

// AdminUserService manages panel accounts. Changes that would lock out the
// root account are refused before any request is made.
type AdminUserService struct {
	api    ports.Dispatcher
	rootID int64
	log    zerolog.Logger
}

func NewAdminUserService(api ports.Dispatcher, rootID int64, log zerolog.Logger) *AdminUserService {
	if rootID <= 0 {
		rootID = DefaultRootAdminID
	}
	return &AdminUserService{api: api, rootID: rootID, log: log.With().Str("resource", "users").Logger()}
}

// RootID is the protected account identifier.
func (s *AdminUserService) RootID() int64 {
	return s.rootID
}

func (s *AdminUserService) List(ctx context.Context) ([]domain.AdminUser, error) {
	payload, err := s.api.Do(ctx, domain.ScopeAdmin, ports.Request{Method: http.MethodGet, Path: usersPath})
	if err != nil {
		return nil, err
	}
	return ports.DecodeList[domain.AdminUser](payload)
}

func (s *AdminUserService) Create(ctx context.Context, form domain.AdminUserForm) (Refreshed[[]domain.AdminUser], error) {
	form = form.Trimmed()
	if err := validate.Struct(form); err != nil {
		return Refreshed[[]domain.AdminUser]{}, err
	}
	return s.mutate(ctx, http.MethodPost, usersPath, map[string]any{
		"name":     form.Name,
		"email":    form.Email,
		"password": form.Password,
		"role":     form.Role,
	})
}

func (s *AdminUserService) SetActive(ctx context.Context, id int64, active bool) (Refreshed[[]domain.AdminUser], error) {
	if id == s.rootID && !active {
		return Refreshed[[]domain.AdminUser]{}, s.reject("the principal superadmin cannot be deactivated")
	}
	return s.mutate(ctx, http.MethodPut, s.userPath(id), map[string]any{"is_active": domain.NewFlag(active)})
}

func (s *AdminUserService) SetRole(ctx context.Context, id int64, role string) (Refreshed[[]domain.AdminUser], error) {
	if id == s.rootID && role != domain.RoleSuperadmin {
		return Refreshed[[]domain.AdminUser]{}, s.reject("the principal superadmin must keep the superadmin role")
	}
	if role != domain.RoleAdmin && role != domain.RoleSuperadmin {
		return Refreshed[[]domain.AdminUser]{}, domain.NewValidationError("role", "role must be one of: admin superadmin")
	}
	return s.mutate(ctx, http.MethodPut, s.userPath(id), map[string]any{"role": role})
}

// ResetPassword sets a new password. The returned acknowledgement is meant
// to be shown to the operator as a blocking notice.
func (s *AdminUserService) ResetPassword(ctx context.Context, id int64, newPassword string) (*domain.PasswordReset, error) {
	if newPassword == "" {
		return nil, domain.NewValidationError("new_password", "new_password is required")
	}
	payload, err := s.api.Do(ctx, domain.ScopeAdmin, ports.Request{
		Method: http.MethodPost,
		Path:   s.userPath(id) + "/reset-password",
		Body:   ports.JSON(map[string]any{"new_password": newPassword}),
	})
	if err != nil {
		s.logFailure(err, "reset password")
		return nil, err
	}
	var ack domain.PasswordReset
	if err := payload.Decode(&ack); err != nil {
		return nil, fmt.Errorf("decode password reset: %w", err)
	}
	return &ack, nil
}

func (s *AdminUserService) Delete(ctx context.Context, id int64, confirm Confirmer) (Refreshed[[]domain.AdminUser], error) {
	if id == s.rootID {
		return Refreshed[[]domain.AdminUser]{}, s.reject("the principal superadmin cannot be deleted")
	}
	if confirm == nil || !confirm.Confirm(ctx, "Delete this administrator? This cannot be undone.") {
		return Refreshed[[]domain.AdminUser]{}, domain.ErrNotConfirmed
	}
	return s.mutate(ctx, http.MethodDelete, s.userPath(id), nil)
}

func (s *AdminUserService) userPath(id int64) string {
	return fmt.Sprintf("%s/%d", usersPath, id)
}

func (s *AdminUserService) reject(msg string) error {
	s.log.Debug().Int64("root_id", s.rootID).Msg(msg)
	return domain.NewRuleError(msg)
}

func (s *AdminUserService) mutate(ctx context.Context, method, path string, body map[string]any) (Refreshed[[]domain.AdminUser], error) {
	req := ports.Request{Method: method, Path: path}
	if body != nil {
		req.Body = ports.JSON(body)
	}
	if _, err := s.api.Do(ctx, domain.ScopeAdmin, req); err != nil {
		s.logFailure(err, method+" "+path)
		return Refreshed[[]domain.AdminUser]{}, err
	}
	return refresh(ctx, s.log, "administrators", s.List)
}

func (s *AdminUserService) logFailure(err error, op string) {
	if domain.IsAuthRequired(err) {
		return
	}
	s.log.Error().Err(err).Str("op", op).Msg("request failed")
}
