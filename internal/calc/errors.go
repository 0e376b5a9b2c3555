package calc

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks user-facing, recoverable validation failures
var ErrInvalidInput = errors.New("invalid input")

// InputError describes which value was rejected and why
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, value, reason string) *InputError {
	return &InputError{Field: field, Value: value, Reason: reason}
}
