package schema

import (
	"errors"
	"fmt"

	"github.com/google/autoparse/pkg/domain"
)

func invalid(reason string, v any) error {
	return &domain.ValidationError{Reason: reason, Value: v}
}

func invalidf(v any, format string, args ...any) error {
	return invalid(fmt.Sprintf(format, args...), v)
}

// atKey prefixes the failing path of a validation error with key.
// Other errors pass through unchanged.
func atKey(key string, err error) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	path := key
	if verr.Key != "" {
		path = key + "." + verr.Key
	}
	return &domain.ValidationError{Key: path, Reason: verr.Reason, Value: verr.Value}
}

// IsValidationFailure reports whether err describes non-conforming data, as
// opposed to a structural problem such as an unresolved reference.
func IsValidationFailure(err error) bool {
	var verr *domain.ValidationError
	return errors.As(err, &verr)
}
