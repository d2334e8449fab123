// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Probe program that raises a fault without linking any handler
// package. It must fail to link: the fault dispatch point references
// a handler symbol that nothing defines.
package main

import "github.com/faultline-project/faultline/fault"

func main() {
	fault.Raise("boot sequence incomplete")
}
