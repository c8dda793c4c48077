package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Enum is a value rendered as a bare GraphQL enum literal (e.g. ACTIVE)
// instead of a quoted string.
type Enum string

// FormatValue renders a filter value into its literal form.
//
// With listContext set (the in/nin matches) the whole value is stringified
// and wrapped in brackets; when its first element is textual the stringified
// value is additionally wrapped in a single pair of quotes, so []string{"a",
// "b"} renders as ["a,b"]. Elements are never quoted one by one.
//
// Otherwise textual values are double quoted and every other value is
// stringified bare. Embedded quotes and newlines are not escaped.
func FormatValue(value any, listContext bool) string {
	if listContext {
		inner := stringify(value)
		if first, ok := firstElement(value); ok && isTextual(first) {
			return `["` + inner + `"]`
		}
		return "[" + inner + "]"
	}

	if isTextual(value) {
		return `"` + stringify(value) + `"`
	}
	return stringify(value)
}

// FormatParameter renders an operation argument value. Strings are quoted,
// Enum values and scalars are bare, nil is null, slices become lists with
// every element formatted recursively and maps become input object literals
// with their keys sorted.
func FormatParameter(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case Enum:
		return string(v)
	case json.Number:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return `"` + rv.String() + `"`
	case reflect.Slice, reflect.Array:
		items := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, FormatParameter(rv.Index(i).Interface()))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case reflect.Map:
		return formatObject(rv)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "null"
		}
		return FormatParameter(rv.Elem().Interface())
	}
	return stringify(value)
}

// stringify converts a value to text the way a template literal would:
// slices are joined with "," (nil elements become empty) and nil is "null".
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case Enum:
		return string(v)
	case json.Number:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i).Interface()
			if elem == nil {
				continue
			}
			parts[i] = stringify(elem)
		}
		return strings.Join(parts, ",")
	case reflect.Map:
		return formatObject(rv)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "null"
		}
		return stringify(rv.Elem().Interface())
	}

	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return s
}

// formatObject renders a map as a GraphQL object literal.
func formatObject(rv reflect.Value) string {
	if rv.Len() == 0 {
		return "{}"
	}

	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})

	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, fmt.Sprintf("%v: %s", key.Interface(), FormatParameter(rv.MapIndex(key).Interface())))
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

// firstElement returns the first element of a list value. A non-empty string
// yields its first character.
func firstElement(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return nil, false
		}
		return rv.Index(0).Interface(), true
	case reflect.String:
		if rv.Len() == 0 {
			return nil, false
		}
		return rv.String()[:1], true
	}
	return nil, false
}

// isTextual reports whether a value renders quoted. Enum and json.Number
// are string-kinded but render bare.
func isTextual(value any) bool {
	switch value.(type) {
	case nil, Enum, json.Number:
		return false
	}
	return reflect.ValueOf(value).Kind() == reflect.String
}
