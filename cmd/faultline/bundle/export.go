// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
	"github.com/faultline-project/faultline/lib/bundle"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/sealed"
)

type exportParams struct {
	cli.StoreAccess
	Output string   `json:"-" flag:"output,o" desc:"bundle file to write, or - for stdout (default faultline-<timestamp>.tar.zst)"`
	Seal   []string `json:"-" flag:"seal" desc:"age public key to seal the bundle to (repeatable)"`
}

// ExportCommand returns the "export" command.
func ExportCommand() *cli.Command {
	var params exportParams
	return &cli.Command{
		Name:    "export",
		Summary: "Pack crash records into a portable bundle",
		Description: `Pack crash records into a compressed bundle for transfer to another
machine. Records are copied byte-for-byte, so sealed records can be
exported without the store's seal key.

With no record arguments the whole store is exported. Pass --seal
with an age public key (repeatable) to encrypt the bundle for its
recipients.`,
		Usage: "faultline export [record...] [flags]",
		Examples: []cli.Example{
			{Description: "Export everything for the analysis host", Command: "faultline export --seal age1ql3z7hjy54pw3hyww5ayyfg7zqgvc7w3j2elw8zmrj2kg5sfn9aqmcac8p -o crashes.tar.zst.age"},
			{Description: "Export one record to stdout", Command: "faultline export latest -o - > crash.tar.zst"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("export", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runExport(logger, &params, args)
		},
	}
}

func runExport(logger *slog.Logger, params *exportParams, args []string) error {
	for _, key := range params.Seal {
		if err := sealed.ParsePublicKey(key); err != nil {
			return cli.Validation("--seal %s: %v", key, err)
		}
	}

	if err := params.Resolve(); err != nil {
		return err
	}
	store, err := params.OpenStore()
	if err != nil {
		return err
	}
	entries, err := selectEntries(store, args)
	if err != nil {
		return err
	}

	options := bundle.WriteOptions{Recipients: params.Seal}

	if params.Output == "-" {
		if err := bundle.Write(os.Stdout, store, entries, options); err != nil {
			return cli.Internal("writing bundle: %w", err)
		}
		logger.Info("exported bundle to stdout", "records", len(entries), "sealed", len(params.Seal) > 0)
		return nil
	}

	output := params.Output
	if output == "" {
		output = "faultline-" + time.Now().UTC().Format("20060102-150405") + ".tar.zst"
		if len(params.Seal) > 0 {
			output += ".age"
		}
	}

	file, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return cli.Conflict("output file %s already exists", output)
		}
		return cli.Internal("creating %s: %w", output, err)
	}
	if err := bundle.Write(file, store, entries, options); err != nil {
		file.Close()
		os.Remove(output)
		return cli.Internal("writing bundle: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(output)
		return cli.Internal("closing %s: %w", output, err)
	}

	summary := fmt.Sprintf("Exported %d records to %s", len(entries), output)
	if len(params.Seal) > 0 {
		summary += fmt.Sprintf(" (sealed to %d recipients)", len(params.Seal))
	}
	fmt.Println(summary)
	return nil
}

// selectEntries resolves the record arguments, or lists the whole
// store when none are given.
func selectEntries(store *crashlog.Store, args []string) ([]crashlog.Entry, error) {
	if len(args) == 0 {
		entries, err := store.List()
		if err != nil {
			return nil, cli.Internal("listing crash store: %w", err)
		}
		if len(entries) == 0 {
			return nil, cli.NotFound("crash store %s is empty, nothing to export", store.Dir())
		}
		return entries, nil
	}

	entries := make([]crashlog.Entry, 0, len(args))
	for _, arg := range args {
		if arg == "latest" {
			latest, err := store.Latest()
			if err != nil {
				return nil, cli.Internal("listing crash store: %w", err)
			}
			if latest == nil {
				return nil, cli.NotFound("crash store %s is empty", store.Dir())
			}
			entries = append(entries, *latest)
			continue
		}
		name := arg
		if !strings.HasSuffix(name, crashlog.FileSuffix) {
			name += crashlog.FileSuffix
		}
		entry, err := store.Stat(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, cli.NotFound("record %s not found in %s", arg, store.Dir()).
					WithHint("Run 'faultline list' to see stored records.")
			}
			return nil, cli.Internal("reading record %s: %w", arg, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
