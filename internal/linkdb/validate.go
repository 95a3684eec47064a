package linkdb

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marshallshelly/linknova/pkg/runtime"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateInput checks in against its validate tags. Failures come back as
// an EntityError wrapping one ValidationError per field.
func validateInput(op, entity, key string, in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &runtime.EntityError{Op: op, Entity: entity, Key: key, Err: errors.Join(runtime.ErrInvalidInput, err)}
	}

	errs := make([]error, len(verrs))
	for i, fe := range verrs {
		errs[i] = &runtime.ValidationError{Field: fe.Field(), Message: describe(fe)}
	}
	return &runtime.EntityError{Op: op, Entity: entity, Key: key, Err: errors.Join(errs...)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be an absolute URL"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "excludesall":
		return "must not contain a comma"
	default:
		return "failed " + fe.Tag()
	}
}
