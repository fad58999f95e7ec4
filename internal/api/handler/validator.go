package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/unidet/portal/internal/pkg/validate"
)

// echoValidator lets handlers call c.Validate(req) with the same rules and
// messages the services apply to edit buffers.
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validate.Validator()}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return validate.Struct(i)
}
