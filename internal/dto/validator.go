package dto

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps form field names to the message shown next to them.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	return fmt.Sprintf("%d invalid fields", len(f))
}

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" && name != "-" {
			return name
		}
		return fld.Name
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

// Email checks a single address.
func (v *Validator) Email(email string) bool {
	return v.validate.Var(email, "required,email") == nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with":
		return "Campo obrigatório"
	case "email":
		return "Email inválido"
	case "min":
		return fmt.Sprintf("Mínimo de %s caracteres", fe.Param())
	case "max":
		return fmt.Sprintf("Máximo de %s caracteres", fe.Param())
	case "eqfield":
		return "As senhas não coincidem"
	case "url":
		return "URL inválida"
	case "fqdn":
		return "Domínio inválido"
	case "number":
		return "Informe um número"
	default:
		return "Valor inválido"
	}
}
