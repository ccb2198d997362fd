package action

import (
	"errors"
	"fmt"
)

var (
	// ErrArity indicates a dynamic construction call with the wrong number of arguments.
	ErrArity = errors.New("action: wrong number of arguments")
	// ErrType indicates a field value of the wrong kind.
	ErrType = errors.New("action: wrong type")
	// ErrValidation indicates a field value of the right kind that fails a semantic rule.
	ErrValidation = errors.New("action: invalid value")
	// ErrUninitialized indicates use of a zero Action or zero Invocable.
	ErrUninitialized = errors.New("action: uninitialized")
	// ErrPanic indicates a recovered panic inside a spawned deferred body.
	ErrPanic = errors.New("action: panic recovered")
)

// Field names reported by FieldError.
const (
	FieldName    = "name"
	FieldService = "service"
	FieldAction  = "action"
)

// FieldError describes one rejected construction field.
type FieldError struct {
	// Field identifies the rejected field.
	Field string
	// Value is the offending input value.
	Value any
	// Err is one of ErrType or ErrValidation.
	Err error
}

// Error returns one operator-readable failure summary.
func (e *FieldError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("action field %s", e.Field)
	}

	return fmt.Sprintf("action field %s (%T): %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the classifying sentinel.
func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// AsFieldError extracts one FieldError from wrapped error chains.
func AsFieldError(err error) (*FieldError, bool) {
	if err == nil {
		return nil, false
	}

	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr, true
	}

	return nil, false
}

func typeError(field string, value any) error {
	return &FieldError{Field: field, Value: value, Err: ErrType}
}

func validationError(field string, value any) error {
	return &FieldError{Field: field, Value: value, Err: ErrValidation}
}
