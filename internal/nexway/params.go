package nexway

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their `param` tag, falling back to the
// JSON name, so errors use the API's parameter names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("param"); name != "" {
			return name
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkParams validates params and converts failures into a
// *MissingParameterError naming operation.
func checkParams(operation string, params any) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &InvalidRequestError{Err: fmt.Errorf("%s: validating parameters: %w", operation, err)}
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &MissingParameterError{Operation: operation, Fields: fields}
}

// refs normalizes a single reference or a list of references into a new
// ordered slice.
func refs(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
