package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/aimatch/portal/internal/core/wizard"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
// It shares the draft validator's tags and messages, so request errors render
// the same way as step errors.
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: wizard.NewValidator()}
}

// Validate satisfies the echo.Validator interface. Failures are
// *domain.ValidationError.
func (ev *echoValidator) Validate(i any) error {
	return wizard.ValidateStruct(ev.v, i)
}
