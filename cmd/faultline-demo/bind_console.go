// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !faultdemo_halt && !faultdemo_persist

package main

import (
	"io"
	"os"

	_ "github.com/faultline-project/faultline/fault/handler/console"
)

// setup selects the console variant: the demo narrates to stdout and
// the handler prints the diagnostic line to stderr.
func setup() io.Writer {
	return os.Stdout
}
