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
	"time"

	"github.com/spf13/pflag"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
	"github.com/faultline-project/faultline/lib/sealed"
)

type keygenParams struct {
	Output string `json:"-" flag:"output,o" desc:"identity file to write" default:"faultline-identity.txt"`
}

// KeygenCommand returns the "keygen" command.
func KeygenCommand() *cli.Command {
	var params keygenParams
	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an age identity for sealed bundles",
		Description: `Generate an age keypair for bundle sealing. The identity file is
written with mode 0600 and stays on the analysis host; the public
key is printed so it can be handed to the machines that export.`,
		Usage: "faultline keygen [flags]",
		Examples: []cli.Example{
			{Description: "Generate the analysis host identity", Command: "faultline keygen -o ~/.config/faultline/identity.txt"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("keygen", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runKeygen(logger, &params, args)
		},
	}
}

func runKeygen(logger *slog.Logger, params *keygenParams, args []string) error {
	if len(args) != 0 {
		return cli.Validation("keygen takes no arguments\n\nUsage: faultline keygen [flags]")
	}

	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		return cli.Internal("generating keypair: %w", err)
	}
	defer keypair.Close()

	file, err := os.OpenFile(params.Output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return cli.Conflict("identity file %s already exists", params.Output).
				WithHint("Refusing to overwrite a private key; move it aside first.")
		}
		return cli.Internal("creating %s: %w", params.Output, err)
	}

	_, err = fmt.Fprintf(file, "# created: %s\n# public key: %s\n%s\n",
		time.Now().UTC().Format(time.RFC3339), keypair.PublicKey, keypair.PrivateKey.String())
	if err != nil {
		file.Close()
		os.Remove(params.Output)
		return cli.Internal("writing %s: %w", params.Output, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(params.Output)
		return cli.Internal("closing %s: %w", params.Output, err)
	}

	fmt.Printf("Public key: %s\nIdentity written to %s\n", keypair.PublicKey, params.Output)
	return nil
}
