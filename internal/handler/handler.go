package handler

import (
	"errors"
	"fmt"
	"reflect"
	"storefront/internal/auth"
	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/validation"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type requestValidator struct {
	v *validator.Validate
}

// NewValidator returns the echo validator used for request payloads. Field
// names in errors follow the json tags.
func NewValidator() (echo.Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validation.RegisterTags(v); err != nil {
		return nil, err
	}
	return &requestValidator{v: v}, nil
}

func (rv *requestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}

func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return service.Invalid("Invalid request body")
	}
	return nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := bind(c, req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return service.Invalid("Invalid request body")
	}

	details := make([]string, 0, len(ve))
	for _, fe := range ve {
		details = append(details, fieldMessage(fe))
	}
	return service.Invalid(details[0], details...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "uk_postcode":
		return "Invalid UK postcode format"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// currentUser returns the caller on routes behind middleware.Auth.
func currentUser(c echo.Context) (*auth.User, error) {
	u := middleware.UserFrom(c)
	if u == nil {
		return nil, service.Unauthorized("Unauthorized")
	}
	return u, nil
}
