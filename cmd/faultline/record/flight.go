// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/pflag"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
)

type flightParams struct {
	cli.StoreAccess
	Raw bool `json:"-" flag:"raw" desc:"keep terminal escape sequences in the output"`
}

// FlightCommand returns the "flight" command.
func FlightCommand() *cli.Command {
	var params flightParams
	return &cli.Command{
		Name:    "flight",
		Summary: "Dump a record's flight recorder tail",
		Description: `Write the flight recorder contents captured with a crash record to
stdout. The tail holds the process's last log output before the
fault, already scrubbed by the handler that wrote it.

Terminal escape sequences are stripped so captured color codes
cannot corrupt the terminal; pass --raw to keep them.`,
		Usage: "faultline flight <record> [flags]",
		Examples: []cli.Example{
			{Description: "Read the log tail of the newest crash", Command: "faultline flight latest"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("flight", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runFlight(logger, &params, args)
		},
	}
}

func runFlight(logger *slog.Logger, params *flightParams, args []string) error {
	if len(args) != 1 {
		return cli.Validation("expected one record name or path\n\nUsage: faultline flight <record> [flags]")
	}

	store, entry, err := openTarget(&params.StoreAccess, args[0])
	if err != nil {
		return err
	}
	envelope, err := readEnvelope(&params.StoreAccess, store, entry)
	if err != nil {
		return err
	}

	if len(envelope.Flight) == 0 {
		logger.Info("record has no flight recorder data", "record", entry.Name)
		return nil
	}

	text := string(envelope.Flight)
	if !params.Raw {
		text = ansi.Strip(text)
	}
	fmt.Print(text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Println()
	}
	return nil
}
