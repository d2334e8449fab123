// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals that the process should exit with a specific code
// without printing an additional error message. Commands return it when
// they have already written their own diagnostic output and only need
// to control the exit status.
type ExitError struct {
	// Code is the process exit code.
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// Exit returns an *ExitError with the given code.
func Exit(code int) *ExitError {
	return &ExitError{Code: code}
}
