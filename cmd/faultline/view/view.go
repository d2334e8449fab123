// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
	"github.com/faultline-project/faultline/lib/crashui"
)

type viewParams struct {
	cli.StoreAccess
}

// ViewCommand returns the "view" command.
func ViewCommand() *cli.Command {
	var params viewParams
	return &cli.Command{
		Name:    "view",
		Summary: "Browse crash records in a terminal UI",
		Description: `Open an interactive browser over the crash store: a filterable
record list with a detail pane showing the diagnostic, the flight
recorder tail, and triage notes.

Sealed records need the seal key to display their contents; without
--key they appear in the list but stay locked.`,
		Usage: "faultline view [flags]",
		Examples: []cli.Example{
			{Description: "Browse the configured store", Command: "faultline view"},
			{Description: "Browse with sealed records unlocked", Command: "faultline view --key /etc/faultline/seal.key"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("view", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runView(&params, args)
		},
	}
}

func runView(params *viewParams, args []string) error {
	if len(args) != 0 {
		return cli.Validation("view takes no arguments\n\nUsage: faultline view [flags]")
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return cli.Validation("view needs an interactive terminal").
			WithHint("Use 'faultline list' or 'faultline inspect' in scripts and pipes.")
	}

	store, err := params.OpenStore()
	if err != nil {
		return err
	}
	key, err := params.Key()
	if err != nil {
		return err
	}
	if key != nil {
		defer key.Close()
	}

	source := crashui.NewStoreSource(store, key)
	model := crashui.NewModel(source)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = program.Run()
	return err
}
