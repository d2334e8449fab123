// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Probe program whose handler raises a second fault while the first
// is being handled. The dispatch point must cut the recursion off,
// write a fixed line to standard error, and exit with code 2.
package main

import (
	_ "unsafe" // for go:linkname

	"github.com/faultline-project/faultline/fault"
)

//go:linkname handle github.com/faultline-project/faultline/fault.handle
func handle(record *fault.Record) {
	fault.Raise("flushing the crash report failed")
}

func main() {
	fault.Raise("checksum mismatch in boot image")
}
