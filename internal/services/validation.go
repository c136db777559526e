package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sbilibin2017/user-registry/internal/models"
)

// newValidator builds a validator that knows the user-specific tags
// and reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("json_object", func(fl validator.FieldLevel) bool {
		data, ok := fl.Field().Interface().(models.UserData)
		return ok && data.IsObject()
	})
	_ = v.RegisterValidation("user_status", func(fl validator.FieldLevel) bool {
		return models.UserStatus(fl.Field().String()).Valid()
	})

	return v
}

// validateStruct runs v over s and converts failures into a *models.ValidationError.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &models.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[fe.Field()] = fieldMessage(fe)
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must not be empty"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "json_object":
		return "must be a JSON object"
	case "user_status":
		return "must be one of active, inactive, deleted"
	default:
		return "is invalid"
	}
}

// normalizeEmail trims and lower-cases an address so uniqueness is case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
