// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"strings"
	"testing"
)

func TestRootSubcommands(t *testing.T) {
	root := Root()

	seen := make(map[string]bool)
	for _, sub := range root.Subcommands {
		if sub.Name == "" {
			t.Error("subcommand with empty name")
			continue
		}
		if seen[sub.Name] {
			t.Errorf("duplicate subcommand %q", sub.Name)
		}
		seen[sub.Name] = true

		if sub.Summary == "" {
			t.Errorf("subcommand %q has no summary", sub.Name)
		}
		if sub.Run == nil && len(sub.Subcommands) == 0 {
			t.Errorf("subcommand %q has neither Run nor subcommands", sub.Name)
		}
	}

	for _, want := range []string{
		"list", "inspect", "flight", "annotate", "view",
		"scan", "history", "export", "import", "keygen",
		"demo", "version",
	} {
		if !seen[want] {
			t.Errorf("root is missing the %q command", want)
		}
	}
}

func TestRootUnknownCommand(t *testing.T) {
	err := Root().Execute(context.Background(), []string{"bogus"})
	if err == nil {
		t.Fatal("unknown command should error")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("error = %q", err)
	}
}

func TestRootSuggestsCloseCommand(t *testing.T) {
	err := Root().Execute(context.Background(), []string{"lsit"})
	if err == nil {
		t.Fatal("misspelled command should error")
	}
	if !strings.Contains(err.Error(), `did you mean "list"`) {
		t.Errorf("error should suggest the close match, got %q", err)
	}
}

func TestRootNoArgs(t *testing.T) {
	err := Root().Execute(context.Background(), []string{})
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("bare invocation should ask for a subcommand, got %v", err)
	}
}

func TestHistoryStatsNested(t *testing.T) {
	root := Root()
	for _, sub := range root.Subcommands {
		if sub.Name != "history" {
			continue
		}
		for _, nested := range sub.Subcommands {
			if nested.Name == "stats" {
				return
			}
		}
		t.Fatal("history should nest a stats subcommand")
	}
	t.Fatal("history command not found")
}
