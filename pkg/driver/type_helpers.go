// Package driver provides safe type conversion helpers for Neo4j/Memgraph database types.
package driver

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

// TypeConversionError represents an error during type conversion from database types.
type TypeConversionError struct {
	Expected string
	Actual   string
	Field    string
}

func (e *TypeConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("type conversion error for field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("type conversion error: expected %s, got %s", e.Expected, e.Actual)
}

// NewTypeConversionError creates a new TypeConversionError.
func NewTypeConversionError(expected, actual, field string) *TypeConversionError {
	return &TypeConversionError{
		Expected: expected,
		Actual:   actual,
		Field:    field,
	}
}

// AsRecordSlice safely converts an interface{} to []*db.Record.
// Returns the slice and true if successful, nil and false otherwise.
func AsRecordSlice(v any) ([]*db.Record, bool) {
	if v == nil {
		return nil, false
	}
	records, ok := v.([]*db.Record)
	return records, ok
}

// AsString safely converts an interface{} to string.
func AsString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// AsInt64 safely converts an interface{} to int64.
// Bolt integers arrive as int64; smaller Go integer types are widened.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	default:
		return 0, false
	}
}

// AsFloat64 safely converts an interface{} to float64.
func AsFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int64:
		return float64(f), true
	default:
		return 0, false
	}
}

// MustString converts v to string or returns a TypeConversionError naming field.
func MustString(v any, field string) (string, error) {
	s, ok := AsString(v)
	if !ok {
		return "", NewTypeConversionError("string", fmt.Sprintf("%T", v), field)
	}
	return s, nil
}

// MustInt64 converts v to int64 or returns a TypeConversionError naming field.
func MustInt64(v any, field string) (int64, error) {
	n, ok := AsInt64(v)
	if !ok {
		return 0, NewTypeConversionError("int64", fmt.Sprintf("%T", v), field)
	}
	return n, nil
}
