// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Probe program that binds its own handler instead of importing a
// shipped one, and the handler breaks the contract by returning. The
// dispatch point must write a fixed line to standard error and exit
// with code 2.
package main

import (
	_ "unsafe" // for go:linkname

	"github.com/faultline-project/faultline/fault"
)

//go:linkname handle github.com/faultline-project/faultline/fault.handle
func handle(record *fault.Record) {
	// Deliberately empty: a handler must never return.
}

func main() {
	fault.Raise("checksum mismatch in boot image")
}
