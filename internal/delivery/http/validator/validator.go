// Package validator adapts go-playground/validator to Echo's Validator
// interface.
package validator

import (
	domainerrors "authgate/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// echoValidator wraps a validator.Validate instance so Echo can call it
// through c.Validate.
type echoValidator struct {
	validate *validator.Validate
}

// New creates the validator used by the Echo servers.
func New() *echoValidator {
	return &echoValidator{validate: validator.New()}
}

// Validate runs struct tag validation and maps failures onto the shared
// validation error so the error middleware renders them as 400s.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error()).
			WrapMessage("request validation failed")
	}

	return nil
}
