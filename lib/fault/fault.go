// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fault

import (
	"errors"
	"fmt"
)

// Code classifies a failure. The string values are wire constants
// carried in socket responses; changing them breaks older clients.
type Code string

const (
	// PermissionDenied means the calling account does not hold the
	// role the operation requires.
	PermissionDenied Code = "permission_denied"

	// Validation means an argument or attached payment is malformed or
	// out of range.
	Validation Code = "validation"

	// OnceOnly means an initialization call was repeated.
	OnceOnly Code = "once_only"

	// DuplicateName means an exhibit name is already registered or is
	// reserved by an in-flight creation.
	DuplicateName Code = "duplicate_name"

	// InvariantViolation means the operation would break a structural
	// invariant, such as leaving a registry without owners.
	InvariantViolation Code = "invariant_violation"

	// Conflict means the entity is in an interim state (a pending
	// operation, a release in flight, a removal) that forbids the call.
	Conflict Code = "conflict"

	// NotFound means the named exhibit, account, or pending operation
	// does not exist.
	NotFound Code = "not_found"

	// Internal is reported by CodeOf for errors that carry no code.
	Internal Code = "internal"
)

// Error is a classified failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so the package-level
// sentinels work with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// Sentinels for errors.Is. Their messages are never shown.
var (
	ErrPermissionDenied   = &Error{Code: PermissionDenied}
	ErrValidation         = &Error{Code: Validation}
	ErrOnceOnly           = &Error{Code: OnceOnly}
	ErrDuplicateName      = &Error{Code: DuplicateName}
	ErrInvariantViolation = &Error{Code: InvariantViolation}
	ErrConflict           = &Error{Code: Conflict}
	ErrNotFound           = &Error{Code: NotFound}
)

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Denied is shorthand for New(PermissionDenied, ...).
func Denied(format string, args ...any) *Error {
	return New(PermissionDenied, format, args...)
}

// Invalid is shorthand for New(Validation, ...).
func Invalid(format string, args ...any) *Error {
	return New(Validation, format, args...)
}

// Missing is shorthand for New(NotFound, ...).
func Missing(format string, args ...any) *Error {
	return New(NotFound, format, args...)
}

// Conflicting is shorthand for New(Conflict, ...).
func Conflicting(format string, args ...any) *Error {
	return New(Conflict, format, args...)
}

// CodeOf returns the code of the first *Error in err's chain, or
// Internal when there is none. A nil error has no code and returns "".
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Code
	}
	return Internal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// FromWire rebuilds a classified error from a code and message received
// over the socket protocol. Unknown or empty codes produce Internal so
// that a newer server cannot smuggle an unrecognised classification
// past errors.Is checks.
func FromWire(code, message string) *Error {
	switch Code(code) {
	case PermissionDenied, Validation, OnceOnly, DuplicateName,
		InvariantViolation, Conflict, NotFound:
		return &Error{Code: Code(code), Message: message}
	default:
		return &Error{Code: Internal, Message: message}
	}
}
