package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fstr-project/pereval-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to
// validate themselves.
//
// Typical pattern: a request struct with validator tags
// (`validate:"required,email"`) and a Validate() method that runs
// validator.Struct on itself.
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue that
// cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that
// satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds request data into payload and validates it.
//
// payload must be a pointer so echo's Bind can populate it. Binding
// and validation failures both surface as *errs.HTTPError with status
// 400 and field-level errors where available.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		message := "Malformed request payload"
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			if msg, ok := echoErr.Message.(string); ok && msg != "" {
				message = msg
			}
		}
		return errs.NewBadRequestError(message, false, nil, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors)
	}

	return nil
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		var customValidationErrors CustomValidationErrors
		if errors.As(err, &customValidationErrors) {
			for _, cerr := range customValidationErrors {
				fieldErrors = append(fieldErrors, errs.FieldError{
					Field: cerr.Field,
					Error: cerr.Message,
				})
			}
			return "Validation failed", fieldErrors
		}
		return "Validation failed", []errs.FieldError{{Field: "", Error: err.Error()}}
	}

	for _, verr := range validationErrors {
		field := strings.ToLower(verr.Field())
		var msg string

		switch verr.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if verr.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", verr.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", verr.Param())
			}

		case "max":
			if verr.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", verr.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", verr.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", verr.Param())

		case "email":
			msg = "must be a valid email address"

		case "dive":
			msg = "some items are invalid"

		default:
			if verr.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, verr.Tag(), verr.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, verr.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
