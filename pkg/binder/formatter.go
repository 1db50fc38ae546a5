package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) (string, string) {
	field := strings.Trim(err.Field, ".")
	return field, fmt.Sprintf("%q should be of type %s", field, err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

// formatValidationError turns a validator failure into the message shown
// next to the field. Only the tags used by payload structs get a dedicated
// message.
func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q is not a valid email", field)
	case "min":
		return fmt.Sprintf("%q %s greater than or equal to %s", field, bound(err), amount(err))
	case "max":
		return fmt.Sprintf("%q %s less than or equal to %s", field, bound(err), amount(err))
	case "oneof":
		quoted := []string{}
		for _, v := range strings.Fields(err.Param()) {
			quoted = append(quoted, fmt.Sprintf("%q", v))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(quoted, ", "))
	}
	return fmt.Sprintf("%q failed the %q check", field, err.Tag())
}

// bound is the subject of a min/max message: numbers are compared by value,
// strings and slices by length.
func bound(err validator.FieldError) string {
	if isNumber(err.Kind()) {
		return "must be"
	}
	return "length must be"
}

func amount(err validator.FieldError) string {
	if isNumber(err.Kind()) {
		return err.Param()
	}
	unit := "character"
	if err.Kind() == reflect.Slice {
		unit = "element"
	}
	if err.Param() != "1" {
		unit += "s"
	}
	return err.Param() + " " + unit
}

func isNumber(k reflect.Kind) bool {
	switch k { //nolint:exhaustive
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
