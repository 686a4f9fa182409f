// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"legal_intake_backend/platform/contact"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the intake-specific rules registered:
//
//	contactphone  8-15 digits once spaces, hyphens and a leading '+' are removed
//	contactemail  local@domain.tld
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("contactphone", func(fl validator.FieldLevel) bool {
		_, ok := contact.ValidatePhone(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return contact.ValidateEmail(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// FieldErrors flattens validator errors into field -> failed tag, suitable
// for the "details" member of an error response.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
