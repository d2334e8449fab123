// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so the top-level dispatcher
// can map them to distinct exit codes, letting scripts make decisions
// (retry, fix input, escalate) without parsing error message text.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// missing required arguments, wrong argument count, unparseable
	// values. The caller should fix the input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced resource does not exist:
	// unknown record name, missing key file, absent crash directory.
	// Retrying with the same parameters will not help.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryConflict indicates the operation conflicts with existing
	// state: output file already exists, concurrent modification.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient indicates a temporary failure: the collector
	// socket was unreachable, an I/O timeout. The caller should back
	// off and retry.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal indicates an unexpected error: bugs, I/O
	// failures, parse errors on data the system produced. The caller
	// should report the error rather than retry.
	CategoryInternal ErrorCategory = "internal"
)

// Exit codes by category. Internal shares code 1 with uncategorized
// errors; scripts cannot distinguish a bug from a plain failure, which
// is fine because neither is actionable without a human.
const (
	exitInternal   = 1
	exitValidation = 2
	exitNotFound   = 3
	exitConflict   = 4
	exitTransient  = 5
)

// CommandError is a categorized error returned by CLI commands. The
// dispatcher in main inspects the Category to select the process exit
// code, so scripts can branch on the class of failure.
//
// CommandError wraps an inner error, preserving the full error chain
// for debugging while adding category metadata. Use the category
// constructors (Validation, NotFound, etc.) rather than constructing
// CommandError directly.
type CommandError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error

	// Hint, when set, is appended to the error text after a blank
	// line. It tells the user what to do next, not what went wrong.
	Hint string
}

// Error returns the underlying error message, followed by the hint
// when one is set.
func (e *CommandError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the CommandError wrapper.
func (e *CommandError) Unwrap() error { return e.Err }

// WithHint attaches a next-step suggestion and returns the receiver,
// so it chains onto the category constructors.
func (e *CommandError) WithHint(hint string) *CommandError {
	e.Hint = hint
	return e
}

// ExitCode returns the process exit code for this error's category.
func (e *CommandError) ExitCode() int {
	switch e.Category {
	case CategoryValidation:
		return exitValidation
	case CategoryNotFound:
		return exitNotFound
	case CategoryConflict:
		return exitConflict
	case CategoryTransient:
		return exitTransient
	default:
		return exitInternal
	}
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error: the operation conflicts with existing state.
func Conflict(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a temporary failure that may succeed on retry.
func Transient(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
