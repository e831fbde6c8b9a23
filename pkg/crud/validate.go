package crud

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. Field names in reported errors are
// JSON names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks the `validate` tags of v. Failures are returned as a
// KindValidation *Error listing the failed rules per field.
func Validate(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Internal(err)
	}

	fields := make(map[string][]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = append(fields[fe.Field()], rule)
	}
	return &Error{Kind: KindValidation, Fields: fields, Err: err}
}
