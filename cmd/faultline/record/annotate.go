// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
)

type annotateParams struct {
	cli.StoreAccess
	Message string `json:"-" flag:"message,m" desc:"note text to append"`
}

// AnnotateCommand returns the "annotate" command.
func AnnotateCommand() *cli.Command {
	var params annotateParams
	return &cli.Command{
		Name:    "annotate",
		Summary: "Append a triage note to a crash record",
		Description: `Append a Markdown note to a crash record's sidecar file. Each note
gets a timestamp heading, so the sidecar accumulates into a triage
journal that inspect and view display alongside the record.`,
		Usage: "faultline annotate <record> -m <text> [flags]",
		Examples: []cli.Example{
			{Description: "Record a triage finding", Command: `faultline annotate latest -m "Reproduced on staging; suspect the frame cursor reset in scan()."`},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("annotate", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runAnnotate(logger, &params, args)
		},
	}
}

func runAnnotate(logger *slog.Logger, params *annotateParams, args []string) error {
	if len(args) != 1 {
		return cli.Validation("expected one record name or path\n\nUsage: faultline annotate <record> -m <text>")
	}
	if strings.TrimSpace(params.Message) == "" {
		return cli.Validation("a note message is required\n\nUsage: faultline annotate <record> -m <text>")
	}

	store, entry, err := openTarget(&params.StoreAccess, args[0])
	if err != nil {
		return err
	}
	if err := store.Annotate(entry.Name, params.Message); err != nil {
		return cli.Internal("annotating %s: %w", entry.Name, err)
	}

	fmt.Printf("Annotated %s\n", entry.Name)
	return nil
}
