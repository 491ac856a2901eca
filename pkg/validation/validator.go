// Package validation wraps go-playground/validator with the custom rules used by
// request DTOs and translates failures into AppError validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// report fields by their wire names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// severity: LOW, MID or HIGH (case-insensitive)
		_ = validate.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
			switch strings.ToUpper(strings.TrimSpace(fl.Field().String())) {
			case "LOW", "MID", "HIGH":
				return true
			}
			return false
		})
	})

	return validate
}

// ValidateStruct validates s and returns a VALIDATION AppError describing every failed field.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describe(fe))
	}
	return apperrors.NewValidationError(strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "latitude":
		return fmt.Sprintf("%s must be a latitude between -90 and 90", field)
	case "longitude":
		return fmt.Sprintf("%s must be a longitude between -180 and 180", field)
	case "gt", "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "severity":
		return fmt.Sprintf("%s must be one of LOW, MID, HIGH", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
