// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
)

type listParams struct {
	cli.StoreAccess
	cli.JSONOutput
}

// ListCommand returns the "list" command.
func ListCommand() *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "List crash records in the store",
		Description: `List the crash records in the configured store, newest first.
Listing reads file headers only, so sealed records appear without
the seal key.`,
		Usage: "faultline list [flags]",
		Examples: []cli.Example{
			{Description: "List records in a specific store directory", Command: "faultline list --dir /var/lib/faultline/crashes"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runList(logger, &params, args)
		},
	}
}

func runList(logger *slog.Logger, params *listParams, args []string) error {
	if len(args) != 0 {
		return cli.Validation("list takes no arguments\n\nUsage: faultline list [flags]")
	}
	if err := params.Resolve(); err != nil {
		return err
	}
	store, err := params.OpenStore()
	if err != nil {
		return err
	}

	entries, err := store.List()
	if err != nil {
		return cli.Internal("listing crash store: %w", err)
	}
	// Newest first for display; the store lists oldest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	if emitted, err := params.EmitJSON(entries); emitted {
		return err
	}

	if len(entries) == 0 {
		logger.Info("crash store is empty", "dir", store.Dir())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCAPTURED\tPID\tSIZE\tCOMPRESSION\tSEALED")
	for _, entry := range entries {
		sealed := "-"
		if entry.Sealed {
			sealed = "sealed"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			entry.Name,
			entry.CapturedAt.UTC().Format(time.RFC3339),
			entry.PID,
			cli.FormatSize(entry.Size),
			entry.Compression,
			sealed)
	}
	return w.Flush()
}
