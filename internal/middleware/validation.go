package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes bounds request bodies accepted by DecodeAndValidate.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRequest validates v against its struct tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeError reports a body that is not acceptable JSON
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "invalid request body: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeAndValidate decodes a JSON request body into v and validates it.
// Unknown fields are rejected.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return &DecodeError{Err: err}
	}
	if dec.More() {
		return &DecodeError{Err: errors.New("body must contain a single JSON object")}
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		out = append(out, ValidationError{
			Field:   e.Field(),
			Message: getErrorMessage(e),
		})
	}
	return out
}

// SummarizeValidationErrors joins field errors into one line
func SummarizeValidationErrors(errs []ValidationError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return "Must be a valid UUID"
	case "min":
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " item(s)"
		}
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	default:
		return "Invalid value"
	}
}
