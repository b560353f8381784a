package handler

import (
	"reflect"
	"strings"
)

// sanitize trims whitespace from the string fields of a struct pointer.
// Fields tagged `sanitize:"-"` are left as sent.
func sanitize(v any) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() || typ.Field(i).Tag.Get("sanitize") == "-" {
			continue
		}
		if field.Kind() == reflect.String {
			field.SetString(strings.TrimSpace(field.String()))
		}
	}
}
