package dto

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/pay-public-api/internal/domain"
)

// ErrBinding marks a body that could not be decoded into the request struct.
var ErrBinding = errors.New("binding failed")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// FieldErrors lists every rule a request body broke, one "<field> <reason>"
// message per violation in sorted order.
type FieldErrors struct {
	Messages []string
}

func (e *FieldErrors) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func (e *FieldErrors) Unwrap() error {
	return domain.ErrValidation
}

// Validate checks v against its validate tags. Rule violations come back as
// *FieldErrors.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	msgs := make([]string, len(violations))
	for i, fe := range violations {
		msgs[i] = fe.Field() + " " + describe(fe)
	}

	slices.Sort(msgs)

	return &FieldErrors{Messages: msgs}
}

// BindAndValidate decodes the JSON body into v and validates it. Decode
// failures wrap ErrBinding.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// describe phrases a broken rule the way the public API words its field
// errors.
func describe(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required", "required_without":
		if isString {
			return "may not be empty"
		}

		return "may not be null"
	case "min":
		if isString {
			return "length must be at least " + fe.Param()
		}

		return "must be greater than or equal to " + fe.Param()
	case "max":
		if isString {
			return "length must be at most " + fe.Param()
		}

		return "must be less than or equal to " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed validation: " + fe.Tag()
	}
}
