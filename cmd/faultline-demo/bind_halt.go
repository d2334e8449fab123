// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

//go:build faultdemo_halt && !faultdemo_persist

package main

import (
	"io"

	_ "github.com/faultline-project/faultline/fault/handler/halt"
)

// setup selects the silent variant: no narration, and the handler
// writes nothing when the fault dispatches.
func setup() io.Writer {
	return io.Discard
}
