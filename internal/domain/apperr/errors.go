// Package apperr holds the error taxonomy shared by every use-case.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers unknown ids and records hidden from the caller.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the caller does not own the record.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUpstreamUnavailable wraps completion service and persistence failures.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError is returned for missing or malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Upstream marks err as an upstream failure while keeping it in the chain.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, op, err)
}
