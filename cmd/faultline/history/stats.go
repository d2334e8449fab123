// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
)

type statsParams struct {
	cli.StoreAccess
	cli.JSONOutput
}

func statsCommand() *cli.Command {
	var params statsParams
	return &cli.Command{
		Name:    "stats",
		Summary: "Summarize the crash index",
		Description: `Aggregate counts over the whole crash index: totals, the indexed
time range, and per-kind and per-executable breakdowns.`,
		Usage: "faultline history stats [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("stats", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runStats(ctx, logger, &params, args)
		},
	}
}

func runStats(ctx context.Context, logger *slog.Logger, params *statsParams, args []string) error {
	if len(args) != 0 {
		return cli.Validation("stats takes no arguments\n\nUsage: faultline history stats [flags]")
	}
	if err := params.Resolve(); err != nil {
		return err
	}
	index, err := params.OpenIndex(true, logger)
	if err != nil {
		return err
	}
	defer index.Close()

	stats, err := index.Stats(ctx)
	if err != nil {
		return cli.Internal("reading crash index stats: %w", err)
	}

	if emitted, err := params.EmitJSON(stats); emitted {
		return err
	}

	fmt.Printf("Records   %d\n", stats.TotalCount)
	if !stats.OldestCapture.IsZero() {
		fmt.Printf("Range     %s to %s\n",
			stats.OldestCapture.UTC().Format(time.RFC3339),
			stats.NewestCapture.UTC().Format(time.RFC3339))
	}
	fmt.Printf("Database  %s\n", cli.FormatSize(stats.DatabaseSizeBytes))

	printBreakdown("By kind:", stats.ByKind)
	printBreakdown("By executable:", stats.ByExecutable)
	return nil
}

func printBreakdown(title string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Printf("\n%s\n", title)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, key := range keys {
		fmt.Fprintf(w, "  %s\t%d\n", key, counts[key])
	}
	w.Flush()
}
