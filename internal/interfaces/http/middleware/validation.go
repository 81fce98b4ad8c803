package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/localprint/bridge/internal/domain/printing"
)

// SetupValidator configures the binding validator with custom tags.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// pagerange defers to the same parser the domain runs later, so a bad
	// range is refused at binding time with the identical message it would
	// get further in.
	_ = v.RegisterValidation("pagerange", func(fl validator.FieldLevel) bool {
		_, err := printing.ParsePageRange(fl.Field().String())
		return err == nil
	})
}

// FormatBindingError turns a ShouldBindJSON failure into the single
// human-readable message the flat response envelope carries.
func FormatBindingError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return getValidationMessage(verrs[0])
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type)
	}

	return "invalid request body"
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "pagerange":
		// Re-run the parser to surface its exact message.
		if s, ok := e.Value().(string); ok {
			if _, err := printing.ParsePageRange(s); err != nil {
				return err.Error()
			}
		}
		return e.Field() + " is not a valid page range"
	default:
		return e.Field() + " is invalid"
	}
}
