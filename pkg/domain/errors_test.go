package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferenceError_Is(t *testing.T) {
	err := fmt.Errorf("compile card: %w", &ReferenceError{Ref: "geo.json", URI: "file:///data/geo.json"})

	assert.ErrorIs(t, err, ErrUnresolvedReference)

	var refErr *ReferenceError
	assert.True(t, errors.As(err, &refErr))
	assert.Equal(t, "geo.json", refErr.Ref)
	assert.Contains(t, err.Error(), "file:///data/geo.json")
}

func TestTypeMismatchError_Is(t *testing.T) {
	plain := &TypeMismatchError{Got: "string", Expected: "boolean", Value: "maybe"}
	assert.ErrorIs(t, plain, ErrTypeMismatch)
	assert.Equal(t, "expected boolean, got string", plain.Error())

	root := &TypeMismatchError{Got: "array", Expected: "object", Err: ErrNotInstantiable}
	assert.ErrorIs(t, root, ErrTypeMismatch)
	assert.ErrorIs(t, root, ErrNotInstantiable)
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{&ValidationError{Key: "age", Reason: "is required"}, `field "age": is required`},
		{&ValidationError{Key: "age", Reason: "must be at most 125", Value: int64(126)}, `field "age": must be at most 125 (got int64)`},
		{&ValidationError{Reason: "expected object"}, "expected object"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}
