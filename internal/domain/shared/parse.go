package shared

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNegativeValue is returned when a parsed number must not be negative
var ErrNegativeValue = errors.New("value must not be negative")

// ParseError is returned when a form or query value cannot be converted.
// Callers receive it instead of a silently defaulted zero value.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseInt parses a base-10 integer field. Surrounding whitespace is ignored.
func ParseInt(field, raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &ParseError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}

// ParseNonNegativeInt parses an integer field that must be >= 0
func ParseNonNegativeInt(field, raw string) (int64, error) {
	v, err := ParseInt(field, raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, &ParseError{Field: field, Value: raw, Err: ErrNegativeValue}
	}
	return v, nil
}

// ParseOptionalInt parses an optional integer field. A blank value yields nil.
func ParseOptionalInt(field, raw string) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := ParseNonNegativeInt(field, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Blank reports whether s is empty after trimming whitespace
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// OptionalString trims s and returns nil when the result is empty
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
