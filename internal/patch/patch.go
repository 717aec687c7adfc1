// Package patch holds the shared pieces of the field-name keyed partial
// update mechanism. Each resource defines its own typed Patch struct with
// optional (pointer) fields and decodes it from the wire map; the helpers
// here do the value coercion and produce uniform errors for unknown field
// names and unparsable values.
package patch

import (
	"fmt"
	"strconv"

	"backoffice/internal/money"
)

// Fields is the wire shape of a partial update: PascalCase field names keyed
// to raw string values. Name matching is case-insensitive.
type Fields map[string]string

// UnknownFieldError reports a field name that resolves to no property of the
// target resource. The whole update is rejected; nothing is applied.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("invalid property name: %s", e.Name)
}

// InvalidValueError reports a value that could not be coerced to the type of
// its target field.
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for property %s", e.Value, e.Field)
}

// String passes the raw value through verbatim.
func String(_, value string) (*string, error) {
	v := value
	return &v, nil
}

// Int parses a base-10 integer.
func Int(field, value string) (*int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, &InvalidValueError{Field: field, Value: value}
	}
	return &n, nil
}

// Cents parses an invariant-culture decimal amount.
func Cents(field, value string) (*money.Cents, error) {
	c, err := money.Parse(value)
	if err != nil {
		return nil, &InvalidValueError{Field: field, Value: value}
	}
	return &c, nil
}
