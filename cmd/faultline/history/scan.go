// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
)

type scanParams struct {
	cli.StoreAccess
}

// ScanCommand returns the "scan" command.
func ScanCommand() *cli.Command {
	var params scanParams
	return &cli.Command{
		Name:    "scan",
		Summary: "Reconcile the crash index with the store",
		Description: `Reconcile the crash index against the store directory: decode and
index records the index has not seen, and drop rows whose files are
gone. Records already indexed are not re-read, so routine scans are
cheap.

Sealed records need the seal key to decode; without --key they are
skipped and picked up by a later scan that has it.`,
		Usage: "faultline scan [flags]",
		Examples: []cli.Example{
			{Description: "Index new records, decoding sealed ones", Command: "faultline scan --key /etc/faultline/seal.key"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("scan", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runScan(ctx, logger, &params, args)
		},
	}
}

func runScan(ctx context.Context, logger *slog.Logger, params *scanParams, args []string) error {
	if len(args) != 0 {
		return cli.Validation("scan takes no arguments\n\nUsage: faultline scan [flags]")
	}
	if err := params.Resolve(); err != nil {
		return err
	}
	store, err := params.OpenStore()
	if err != nil {
		return err
	}
	index, err := params.OpenIndex(false, logger)
	if err != nil {
		return err
	}
	defer index.Close()

	key, err := params.Key()
	if err != nil {
		return err
	}
	if key != nil {
		defer key.Close()
	}

	added, removed, err := index.Rescan(ctx, store, key)
	if err != nil {
		return cli.Internal("rescanning %s: %w", store.Dir(), err)
	}

	fmt.Printf("Indexed %d new records, removed %d stale rows (%s)\n", added, removed, params.IndexPath)
	return nil
}
