// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCommandError_ErrorWithoutHint(t *testing.T) {
	err := Validation("missing required argument <record>")
	if err.Error() != "missing required argument <record>" {
		t.Errorf("Error() = %q, want %q", err.Error(), "missing required argument <record>")
	}
}

func TestCommandError_ErrorWithHint(t *testing.T) {
	err := Validation("missing required argument <record>").
		WithHint("Run 'faultline list' to see record names.")

	want := "missing required argument <record>\n\nRun 'faultline list' to see record names."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCommandError_WithHintReturnsReceiver(t *testing.T) {
	original := Validation("bad input")
	chained := original.WithHint("fix it")
	if original != chained {
		t.Error("WithHint should return the same pointer")
	}
}

func TestCommandError_WithHintPreservesCategory(t *testing.T) {
	err := NotFound("record %q not found", "1723412345678901234-4021").
		WithHint("Run 'faultline list' to see available records.")

	if err.Category != CategoryNotFound {
		t.Errorf("Category = %q, want %q", err.Category, CategoryNotFound)
	}
}

func TestCommandError_HintSurvivesErrorsAs(t *testing.T) {
	inner := Validation("bad label filter").WithHint("use key=value format")
	wrapped := fmt.Errorf("query failed: %w", inner)

	var cmdErr *CommandError
	if !errors.As(wrapped, &cmdErr) {
		t.Fatal("errors.As should find CommandError in wrapped chain")
	}
	if cmdErr.Hint != "use key=value format" {
		t.Errorf("Hint = %q after unwrap, want %q", cmdErr.Hint, "use key=value format")
	}
}

func TestCommandError_EmptyHintNotAppended(t *testing.T) {
	err := Internal("unexpected failure")
	if strings.Contains(err.Error(), "\n\n") {
		t.Error("empty hint should not add blank line to error message")
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	cause := errors.New("open /var/lib/faultline: permission denied")
	err := Internal("opening store: %w", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestCommandError_AllCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      *CommandError
		category ErrorCategory
		exitCode int
	}{
		{"Validation", Validation("bad"), CategoryValidation, 2},
		{"NotFound", NotFound("missing"), CategoryNotFound, 3},
		{"Conflict", Conflict("duplicate"), CategoryConflict, 4},
		{"Transient", Transient("timeout"), CategoryTransient, 5},
		{"Internal", Internal("bug"), CategoryInternal, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.err.Category != test.category {
				t.Errorf("Category = %q, want %q", test.err.Category, test.category)
			}
			if got := test.err.ExitCode(); got != test.exitCode {
				t.Errorf("ExitCode() = %d, want %d", got, test.exitCode)
			}
			// All constructors should support WithHint.
			hinted := test.err.WithHint("try again")
			if hinted.Hint != "try again" {
				t.Errorf("Hint = %q after WithHint, want %q", hinted.Hint, "try again")
			}
		})
	}
}

func TestExitError(t *testing.T) {
	err := Exit(3)
	if err.Code != 3 {
		t.Errorf("Code = %d, want 3", err.Code)
	}
	if !strings.Contains(err.Error(), "3") {
		t.Errorf("Error() = %q, should mention the code", err.Error())
	}

	var exitErr *ExitError
	wrapped := fmt.Errorf("viewer: %w", err)
	if !errors.As(wrapped, &exitErr) {
		t.Fatal("errors.As should find ExitError in wrapped chain")
	}
	if exitErr.Code != 3 {
		t.Errorf("unwrapped Code = %d, want 3", exitErr.Code)
	}
}
