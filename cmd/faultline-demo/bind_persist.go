// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

//go:build faultdemo_persist

package main

import (
	"io"
	"os"

	"github.com/faultline-project/faultline/fault/handler/persist"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/flightrec"
	"github.com/faultline-project/faultline/lib/scrub"
)

// setup selects the persist variant: narration is teed through a
// flight recorder whose tail lands in the crash record.
func setup() io.Writer {
	flight := flightrec.New(flightrec.DefaultCapacity)
	persist.Configure(persist.Config{
		Flight:      flight,
		Scrub:       scrub.Default(),
		Compression: crashlog.CompressionLZ4,
		Labels:      map[string]string{"app": "faultline-demo"},
		Action:      persist.ActionExit,
	})
	return flight.TeeWriter(os.Stdout)
}
