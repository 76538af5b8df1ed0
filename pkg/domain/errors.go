package domain

import (
	"errors"
	"fmt"
)

// ErrUnresolvedReference is returned when a referenced schema has not been compiled yet.
// Schemas must be compiled in dependency order: parents and $ref targets first.
var ErrUnresolvedReference = errors.New("unresolved schema reference")

// ErrTypeMismatch is returned when a value cannot be coerced to the expected kind or format.
var ErrTypeMismatch = errors.New("type mismatch")

// ErrNotInstantiable is returned when an instance is built from a schema whose root type is not "object".
var ErrNotInstantiable = errors.New("only schemas of type 'object' are instantiable")

// ErrUnknownProperty is returned when a dynamic field is accessed on a schema that disallows additional properties.
var ErrUnknownProperty = errors.New("unknown property")

// ErrSchemaNotFound is returned when a schema source has no document for a URI.
var ErrSchemaNotFound = errors.New("schema not found")

// ReferenceError describes an unresolved $ref, extends or items reference.
type ReferenceError struct {
	Ref string // Reference as written in the schema
	URI string // Reference resolved against the owning schema's base
}

func (e *ReferenceError) Error() string {
	if e.URI == "" || e.URI == e.Ref {
		return fmt.Sprintf("could not find schema %q: referenced schemas must be compiled first", e.Ref)
	}
	return fmt.Sprintf("could not find schema %q (%s): referenced schemas must be compiled first", e.Ref, e.URI)
}

func (e *ReferenceError) Unwrap() error { return ErrUnresolvedReference }

// TypeMismatchError reports a value whose kind or format does not fit.
type TypeMismatchError struct {
	Got      string // Observed kind of the value
	Expected string // Expected kind, optionally with its format
	Value    any
	Err      error // Optional cause; defaults to ErrTypeMismatch
}

func (e *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
	if e.Err != nil && !errors.Is(e.Err, ErrTypeMismatch) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TypeMismatchError) Unwrap() error {
	if e.Err == nil {
		return ErrTypeMismatch
	}
	return e.Err
}

// Is makes every TypeMismatchError match ErrTypeMismatch, whatever its cause.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// ValidationError describes the first key that failed validation.
type ValidationError struct {
	Key    string // Dotted path of the failing key; empty for the root
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Key == "" {
		return e.Reason
	}
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Key, e.Reason, e.Value)
}
