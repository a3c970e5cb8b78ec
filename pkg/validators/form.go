package validators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a validation message for a single form field
type FieldError struct {
	Key   string
	Value string
}

// FieldErrors turns an error returned by gin's binding into messages
// that can be shown next to the form fields. Errors that don't come from
// the validator are reported under the "form" key.
func FieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Key: "form", Value: "could not read the submitted form"}}
	}

	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{
			Key:   strings.ToLower(fe.Field()),
			Value: message(fe),
		})
	}

	return out
}

func message(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return "must be a valid email address"
	case EmailTag:
		return "must be a plain email address like name@example.com"
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}
