package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/AlibekovAA/membership/internal/common/constants"
	"github.com/AlibekovAA/membership/internal/membership/service"
)

// messages maps "<StructField>.<tag>" to the text returned to clients.
var messages = map[string]string{
	"Email.notblank":     "Email is required",
	"Email.email":        "Email format is invalid",
	"Password.notblank":  "Password is required",
	"Password.min":       "Password must be at least 8 characters long",
	"Password.bcryptlen": "Password must be at most 72 bytes long",
	"FirstName.notblank": "First name is required",
	"FirstName.max":      "First name must be at most 100 characters long",
	"LastName.notblank":  "Last name is required",
	"LastName.max":       "Last name must be at most 100 characters long",
}

type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= constants.PasswordMaxLength
	})
	return &requestValidator{validate: v}
}

// Struct validates req and returns the first failure as a validation error.
func (rv *requestValidator) Struct(req any) error {
	err := rv.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return service.ErrValidation.WithCause(err)
	}

	first := verrs[0]
	if msg, ok := messages[first.StructField()+"."+first.Tag()]; ok {
		return service.NewValidationError(msg)
	}
	return service.NewValidationError(first.Error())
}
