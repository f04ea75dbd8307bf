package item

import (
	"errors"
	"items/pkg/httperror"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
}

func validateRequest(op string, req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make([]FieldError, 0, len(ve))
		for _, fe := range ve {
			details = append(details, FieldError{Field: fe.Field(), Tag: fe.Tag()})
		}

		return httperror.UnprocessableEntity(
			"item."+op+".validation_failed",
			"Validation failed for the request",
			details,
		)
	}

	return httperror.InternalServerError(
		"item."+op+".validation_error",
		"An unexpected validation error occurred",
		nil,
	)
}
