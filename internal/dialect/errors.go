package dialect

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is returned when neither a dialect nor the generic
	// mapping knows a SQL type for a field.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrBindFailure is returned when a value cannot be bound to a parameter.
	ErrBindFailure = errors.New("bind failure")

	// ErrNoDialectMatch is returned when no registered provider handles a
	// connection URL's subprotocol.
	ErrNoDialectMatch = errors.New("no dialect found")

	// ErrNoColumns is returned for statements that would name no column.
	ErrNoColumns = errors.New("table must have at least one column")

	// ErrNoKeyColumns is returned for statements that require key columns.
	ErrNoKeyColumns = errors.New("at least one key column is required")

	// ErrDuplicateSubprotocol is returned when a subprotocol is registered twice.
	ErrDuplicateSubprotocol = errors.New("subprotocol already registered")

	// ErrInvalidURL is returned when a connection URL carries no subprotocol.
	ErrInvalidURL = errors.New("invalid connection url")
)

// UnsupportedTypeError names the field whose type could not be mapped.
type UnsupportedTypeError struct {
	Dialect string
	Field   string
	Type    string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s: type %s of field %q has no SQL mapping", e.Dialect, e.Type, e.Field)
}

func (e *UnsupportedTypeError) Unwrap() error { return ErrUnsupportedType }

// BindError reports a value that could not be bound to parameter Index.
type BindError struct {
	Index int
	Field string
	Value any
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind parameter %d (field %q, value of type %T): %v", e.Index, e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying cause, typically the parameter setter's error.
func (e *BindError) Unwrap() error { return e.Err }

// Is makes every BindError match ErrBindFailure.
func (e *BindError) Is(target error) bool { return target == ErrBindFailure }

// NoDialectError is returned when a URL's subprotocol has no provider.
type NoDialectError struct {
	URL         string
	Subprotocol string
	Available   []string
}

func (e *NoDialectError) Error() string {
	return fmt.Sprintf("no dialect for subprotocol %q in %q (available: %v)", e.Subprotocol, e.URL, e.Available)
}

func (e *NoDialectError) Unwrap() error { return ErrNoDialectMatch }
