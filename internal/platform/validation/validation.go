// Package validation installs go-playground/validator as the echo
// Validator. Failures come back as apperr validation errors naming the
// first offending JSON field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/medbook/medbook/internal/platform/apperr"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", notBlank)
	return &Validator{v: v}
}

// Validate satisfies echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	return apperr.Wrap(apperr.KindValidation, describe(verrs[0]), err)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "datetime":
		return fmt.Sprintf("%s must match the format %s", field, layoutHint(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

func layoutHint(layout string) string {
	switch layout {
	case "2006-01-02":
		return "YYYY-MM-DD"
	case "15:04":
		return "HH:MM"
	}
	return layout
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.String:
		return strings.TrimSpace(f.String()) != ""
	case reflect.Ptr:
		if f.IsNil() {
			return true
		}
		e := f.Elem()
		return e.Kind() != reflect.String || strings.TrimSpace(e.String()) != ""
	}
	return true
}
