// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/museum/lib/fault"
)

// ErrorCategory classifies command errors so scripts can react to the
// exit code without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation: the caller provided bad input or the
	// request broke an entity rule. Fix the input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: a referenced account, meme, or receipt does
	// not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden: the caller lacks permission.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict: the operation conflicts with existing state,
	// such as a duplicate name or an operation already in flight.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient: the daemon could not be reached.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: an unexpected failure. Report, don't retry.
	CategoryInternal ErrorCategory = "internal"
)

// exitCodes maps each category to the process exit status.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryNotFound:   3,
	CategoryForbidden:  4,
	CategoryConflict:   5,
	CategoryTransient:  6,
	CategoryInternal:   1,
}

// ToolError is a categorized error returned by commands. It wraps the
// inner error so errors.Is and errors.As still see the full chain.
type ToolError struct {
	Category ErrorCategory
	Err      error

	// Hint is an optional next step printed after the error.
	Hint string
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// WithHint attaches an actionable hint and returns e.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a failure that may succeed on retry.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure or bug.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// CategoryOf classifies err. A ToolError anywhere in the chain wins;
// otherwise the entity fault code decides.
func CategoryOf(err error) ErrorCategory {
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return toolError.Category
	}
	switch fault.CodeOf(err) {
	case fault.Validation, fault.InvariantViolation, fault.OnceOnly:
		return CategoryValidation
	case fault.NotFound:
		return CategoryNotFound
	case fault.PermissionDenied:
		return CategoryForbidden
	case fault.DuplicateName, fault.Conflict:
		return CategoryConflict
	default:
		return CategoryInternal
	}
}

// ExitCode returns the process exit status for err.
func ExitCode(err error) int {
	return exitCodes[CategoryOf(err)]
}

// HintOf returns the hint attached to err, if any.
func HintOf(err error) string {
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return toolError.Hint
	}
	return ""
}
