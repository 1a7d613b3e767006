package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their koanf key so errors name the YAML
// path or environment variable an operator has to fix.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	v.RegisterStructValidation(validateRetry, RetryConfig{})
	v.RegisterStructValidation(validatePayments, Config{})

	return v
}

// Validate checks the whole configuration. The service refuses to start on
// any violation; every violation is listed.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

// validateRetry rejects a backoff ceiling below its starting interval.
func validateRetry(sl validator.StructLevel) {
	r, _ := sl.Current().Interface().(RetryConfig)
	if r.MaxInterval != 0 && r.MaxInterval < r.InitialInterval {
		sl.ReportError(r.MaxInterval, "max_interval", "MaxInterval", "gtefield", "initial_interval")
	}
}

// validatePayments enforces the production-only payment rules: public links
// are https and http return URLs stay disabled.
func validatePayments(sl validator.StructLevel) {
	c, _ := sl.Current().Interface().(Config)
	if c.App.Environment != "prod" {
		return
	}

	if c.Payments.AllowInsecureReturnURLs {
		sl.ReportError(c.Payments.AllowInsecureReturnURLs,
			"payments.allow_insecure_return_urls", "AllowInsecureReturnURLs", "prod_forbidden", "")
	}

	if u, err := url.Parse(c.Payments.PublicBaseURL); err == nil && u.Scheme != "" && u.Scheme != "https" {
		sl.ReportError(c.Payments.PublicBaseURL,
			"payments.public_base_url", "PublicBaseURL", "https_in_prod", "")
	}
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return field + " must be a valid URL"
	case "prod_forbidden":
		return field + " must be disabled in prod"
	case "https_in_prod":
		return field + " must use https in prod"
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath drops the root struct from a validator namespace:
// "Config.server.read_timeout" becomes "server.read_timeout".
func formatFieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return rest
}
