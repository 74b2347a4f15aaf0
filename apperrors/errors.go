// Package apperrors defines the typed error surface shared by the
// engine and its callers. Every engine failure carries a Kind that the
// command layer maps to a user-facing message; the engine itself never
// formats user text.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure
type Kind string

const (
	// KindNotFound - poll, option or account absent
	KindNotFound Kind = "not_found"
	// KindInvalidState - wrong poll status for the requested operation
	KindInvalidState Kind = "invalid_state"
	// KindInvalidInput - bad option index, malformed duration, too few options
	KindInvalidInput Kind = "invalid_input"
	// KindInsufficientFunds - balance below stake
	KindInsufficientFunds Kind = "insufficient_funds"
	// KindUnauthorized - caller lacks ownership of the poll
	KindUnauthorized Kind = "unauthorized"
	// KindIntegrityViolation - store-level constraint failure; indicates a
	// logic bug elsewhere, never retried
	KindIntegrityViolation Kind = "integrity_violation"
)

// Error is a kinded error with an optional wrapped cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so sentinel-style checks work:
// errors.Is(err, apperrors.NotFoundf("")) is true for any NotFound.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf extracts the kind from an error chain, or "" for untyped errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind checks whether the error chain carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// NotFoundf creates a NotFound error
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidStatef creates an InvalidState error
func InvalidStatef(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputf creates an InvalidInput error
func InvalidInputf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// InsufficientFundsf creates an InsufficientFunds error
func InsufficientFundsf(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: fmt.Sprintf(format, args...)}
}

// Unauthorizedf creates an Unauthorized error
func Unauthorizedf(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// IntegrityViolation wraps a store-level constraint failure
func IntegrityViolation(err error, message string) *Error {
	return &Error{Kind: KindIntegrityViolation, Message: message, Err: err}
}
