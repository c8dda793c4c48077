package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// StructToMap converts a Go struct into a map[string]any keyed by the json
// names of its fields.
//
// The record is marshaled to JSON and decoded back with json.Number for
// numbers, so integers keep their exact text. Nested structs become nested
// map[string]any values and slices become []any, which the operation
// renderer turns into GraphQL input objects and lists.
//
// The input `record` must be a struct or a pointer to a struct. If `record` is
// nil, or not a struct/pointer to a struct, an error is returned.
//
// Example:
//
//	type Address struct {
//		City string `json:"city"`
//	}
//	type Input struct {
//		Name    string  `json:"name"`
//		Address Address `json:"address"`
//	}
//	m, err := StructToMap(Input{Name: "ana", Address: Address{City: "Lisbon"}})
//	// m == map[string]any{"name": "ana", "address": map[string]any{"city": "Lisbon"}}
func StructToMap[T any](record T) (map[string]any, error) {
	val := reflect.ValueOf(record)

	if !val.IsValid() {
		return nil, fmt.Errorf("input record cannot be nil")
	}

	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("input record cannot be a nil pointer to a struct")
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input record must be a struct or a pointer to a struct, got %s", val.Kind())
	}

	jsonBytes, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("StructToMap: failed to marshal input record to JSON: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(jsonBytes))
	decoder.UseNumber()

	var result map[string]any
	if err := decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf("StructToMap: failed to decode JSON into map[string]any: %w", err)
	}
	return result, nil
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
