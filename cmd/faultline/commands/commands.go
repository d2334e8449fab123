// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete faultline CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/faultline-project/faultline/cmd/faultline/bundle"
	"github.com/faultline-project/faultline/cmd/faultline/cli"
	"github.com/faultline-project/faultline/cmd/faultline/demo"
	"github.com/faultline-project/faultline/cmd/faultline/history"
	"github.com/faultline-project/faultline/cmd/faultline/record"
	"github.com/faultline-project/faultline/cmd/faultline/view"
	"github.com/faultline-project/faultline/lib/version"
)

// Root builds and returns the complete faultline command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "faultline",
		Description: `Faultline: crash record tooling.

Inspect, query, and triage the crash records written by fault
handlers, and move them between machines as sealed bundles.`,
		Subcommands: []*cli.Command{
			record.ListCommand(),
			record.InspectCommand(),
			record.FlightCommand(),
			record.AnnotateCommand(),
			view.ViewCommand(),
			history.ScanCommand(),
			history.HistoryCommand(),
			bundle.ExportCommand(),
			bundle.ImportCommand(),
			bundle.KeygenCommand(),
			demo.DemoCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Printf("faultline %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "List the crash records on this machine",
				Command:     "faultline list",
			},
			{
				Description: "Inspect the most recent crash",
				Command:     "faultline inspect latest",
			},
			{
				Description: "Browse records interactively",
				Command:     "faultline view",
			},
			{
				Description: "Index the store, then query it",
				Command:     "faultline scan && faultline history --since 36h",
			},
			{
				Description: "Export records for another machine",
				Command:     "faultline export --output crashes.tar.zst",
			},
		},
	}
}
