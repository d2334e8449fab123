// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
	"github.com/faultline-project/faultline/cmd/faultline/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.Root().Execute(ctx, os.Args[1:]); err != nil {
		stop()

		// Commands that manage their own output return an ExitError
		// carrying just the status code.
		var exit *cli.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		var command *cli.CommandError
		if errors.As(err, &command) {
			os.Exit(command.ExitCode())
		}
		os.Exit(1)
	}
}
