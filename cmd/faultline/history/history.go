// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/lib/crashindex"
)

type historyParams struct {
	cli.StoreAccess
	cli.JSONOutput
	Kind       string   `json:"-" flag:"kind" desc:"filter by fault kind (panic, index, slice, divide, assert, unreachable)"`
	Executable string   `json:"-" flag:"executable" desc:"filter by executable path or base name"`
	Search     string   `json:"-" flag:"search" desc:"substring match on the fault message"`
	Labels     []string `json:"-" flag:"label" desc:"filter by label (key=value, repeatable)"`
	Since      string   `json:"-" flag:"since" desc:"only records after this time (duration ago, YYYY-MM-DD, or RFC 3339)"`
	Until      string   `json:"-" flag:"until" desc:"only records before this time (same forms as --since)"`
	Limit      int      `json:"-" flag:"limit" desc:"maximum rows to return" default:"20"`
}

// HistoryCommand returns the "history" command with its nested "stats"
// subcommand. A bare "faultline history" queries the index; "faultline
// history stats" summarizes it.
func HistoryCommand() *cli.Command {
	var params historyParams
	return &cli.Command{
		Name:    "history",
		Summary: "Query the crash index",
		Description: `Query the crash index, newest first. Filters combine with AND; run
'faultline scan' first so the index reflects the store.`,
		Usage: "faultline history [filters]",
		Examples: []cli.Example{
			{Description: "Crashes in the last day and a half", Command: "faultline history --since 36h"},
			{Description: "Bounds faults from one binary", Command: "faultline history --kind index --executable ingestd"},
			{Description: "Search fault messages", Command: `faultline history --search "len is 3"`},
		},
		Subcommands: []*cli.Command{
			statsCommand(),
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("history", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runHistory(ctx, logger, &params, args)
		},
	}
}

func runHistory(ctx context.Context, logger *slog.Logger, params *historyParams, args []string) error {
	if len(args) != 0 {
		return cli.Validation("unexpected argument %q\n\nUsage: faultline history [filters]", args[0])
	}
	filter, err := buildFilter(params, time.Now())
	if err != nil {
		return err
	}
	if err := params.Resolve(); err != nil {
		return err
	}
	index, err := params.OpenIndex(true, logger)
	if err != nil {
		return err
	}
	defer index.Close()

	rows, err := index.Query(ctx, filter)
	if err != nil {
		return cli.Internal("querying crash index: %w", err)
	}

	if emitted, err := params.EmitJSON(rows); emitted {
		return err
	}
	if len(rows) == 0 {
		logger.Info("no crash records match", "index", params.IndexPath)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CAPTURED\tKIND\tEXECUTABLE\tMESSAGE\tNAME")
	for _, row := range rows {
		message := row.Message
		if message == "" {
			message = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			row.CapturedAt.UTC().Format("2006-01-02 15:04:05"),
			row.Kind,
			filepath.Base(row.Executable),
			truncate(message, 48),
			row.Name)
	}
	return w.Flush()
}

// buildFilter validates the filter flags and converts them into an
// index query. now anchors relative --since/--until durations.
func buildFilter(params *historyParams, now time.Time) (crashindex.Filter, error) {
	filter := crashindex.Filter{
		Executable: params.Executable,
		Search:     params.Search,
		Limit:      params.Limit,
	}

	if params.Kind != "" {
		if _, ok := fault.ParseKind(params.Kind); !ok {
			return crashindex.Filter{}, cli.Validation(
				"unknown fault kind %q (valid: panic, index, slice, divide, assert, unreachable)", params.Kind)
		}
		filter.Kind = params.Kind
	}

	labels, err := parseLabels(params.Labels)
	if err != nil {
		return crashindex.Filter{}, err
	}
	filter.Labels = labels

	if filter.Since, err = parseTimeFlag(params.Since, now); err != nil {
		return crashindex.Filter{}, cli.Validation("--since: %v", err)
	}
	if filter.Until, err = parseTimeFlag(params.Until, now); err != nil {
		return crashindex.Filter{}, cli.Validation("--until: %v", err)
	}
	return filter, nil
}

// parseLabels converts repeated key=value flags into a label map.
func parseLabels(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	labels := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, cli.Validation("label %q is not key=value", pair)
		}
		labels[key] = value
	}
	return labels, nil
}

// parseTimeFlag accepts a duration back from now ("36h"), a date
// ("2026-08-01"), or a full RFC 3339 timestamp. Empty means unbounded.
func parseTimeFlag(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a duration, date, or RFC 3339 timestamp", value)
}

// truncate shortens s to at most max runes for table cells.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
