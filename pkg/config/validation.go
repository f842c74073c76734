package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Validatable interface {
	Validate() error
}

// getFieldFlag resolves the flag tag of the field at namespace, e.g.
// "Upgrade.Relayer.URL", starting from structType.
func getFieldFlag(structType reflect.Type, namespace string) string {
	parts := strings.Split(namespace, ".")
	// the first element names the root struct itself
	if len(parts) > 1 {
		parts = parts[1:]
	}

	var field reflect.StructField
	t := structType
	for _, name := range parts {
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			break
		}
		f, found := t.FieldByName(name)
		if !found {
			return "--" + strings.ToLower(parts[len(parts)-1])
		}
		field = f
		t = f.Type
	}

	if flagTag := field.Tag.Get("flag"); flagTag != "" {
		return "--" + flagTag
	}
	return "--" + strings.ToLower(parts[len(parts)-1])
}

func formatValidationError(structType reflect.Type, errs validator.ValidationErrors) error {
	var messages []string

	for _, err := range errs {
		field := strings.TrimPrefix(err.Namespace(), structType.Name()+".")

		flag := getFieldFlag(structType, err.StructNamespace())
		hint := fmt.Sprintf(" (see %s flag for help)", flag)

		switch err.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required but not provided%s", field, hint))
		case "url":
			messages = append(messages, fmt.Sprintf("%s must be a valid URL%s", field, hint))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s%s", field, err.Param(), hint))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s%s", field, err.Param(), hint))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of [%s]%s", field, err.Param(), hint))
		default:
			messages = append(messages, fmt.Sprintf("%s failed validation: %s%s", field, err.Tag(), hint))
		}
	}

	if len(messages) == 1 {
		return fmt.Errorf("config validation error: %s", messages[0])
	}
	return fmt.Errorf("config validation errors:\n  - %s", strings.Join(messages, "\n  - "))
}

func validateConfig[T Validatable](cfg T) error {
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationError(reflect.TypeOf(cfg), validationErrors)
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
