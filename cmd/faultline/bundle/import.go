// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
	"github.com/faultline-project/faultline/lib/bundle"
	"github.com/faultline-project/faultline/lib/sealed"
	"github.com/faultline-project/faultline/lib/secret"
)

type importParams struct {
	cli.StoreAccess
	Identity string `json:"-" flag:"identity" desc:"age identity file for sealed bundles"`
}

// ImportCommand returns the "import" command.
func ImportCommand() *cli.Command {
	var params importParams
	return &cli.Command{
		Name:    "import",
		Summary: "Unpack a bundle into the crash store",
		Description: `Unpack a crash bundle into the configured store. Records already
present are skipped, never overwritten, so importing the same bundle
twice is harmless.

Sealed bundles need the matching age identity file, passed with
--identity. The bundle kind is detected from the stream, not the
file name.`,
		Usage: "faultline import <bundle> [flags]",
		Examples: []cli.Example{
			{Description: "Import a sealed bundle from an edge box", Command: "faultline import crashes.tar.zst.age --identity ~/.config/faultline/identity.txt"},
			{Description: "Import from stdin", Command: "ssh edge-07 faultline export -o - | faultline import -"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("import", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runImport(logger, &params, args)
		},
	}
}

func runImport(logger *slog.Logger, params *importParams, args []string) error {
	if len(args) != 1 {
		return cli.Validation("expected one bundle path\n\nUsage: faultline import <bundle> [flags]")
	}

	var identity *secret.Buffer
	if params.Identity != "" {
		var err error
		identity, err = loadIdentity(params.Identity)
		if err != nil {
			return cli.Validation("identity %s: %v", params.Identity, err)
		}
		defer identity.Close()
	}

	if err := params.Resolve(); err != nil {
		return err
	}
	store, err := params.OpenStore()
	if err != nil {
		return err
	}

	var input io.Reader = os.Stdin
	if args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return cli.NotFound("opening bundle: %v", err)
		}
		defer file.Close()
		input = file
	}

	result, err := bundle.Read(input, store, identity)
	if errors.Is(err, bundle.ErrSealedBundle) {
		return cli.Validation("bundle is sealed").
			WithHint("Pass --identity with the age identity file that matches a bundle recipient.")
	}
	if err != nil {
		return cli.Internal("importing bundle: %w", err)
	}

	fmt.Printf("Imported %d records into %s (%d already present)\n",
		len(result.Imported), store.Dir(), len(result.Skipped))
	if len(result.Imported) > 0 {
		fmt.Println("Run 'faultline scan' to index the imported records.")
	}
	return nil
}

// loadIdentity reads an age identity file into locked memory. Identity
// files follow the age-keygen layout: comment lines starting with "#",
// then the AGE-SECRET-KEY-1 line.
func loadIdentity(path string) (*secret.Buffer, error) {
	raw, err := secret.ReadFromPath(path)
	if err != nil {
		return nil, err
	}
	defer raw.Close()

	for _, line := range strings.Split(raw.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		identity, err := secret.NewFromBytes([]byte(line))
		if err != nil {
			return nil, err
		}
		if err := sealed.ParsePrivateKey(identity); err != nil {
			identity.Close()
			return nil, err
		}
		return identity, nil
	}
	return nil, errors.New("no identity line found")
}
