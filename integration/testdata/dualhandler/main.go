// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Probe program that links two handler packages at once. It must fail
// to link: both packages define the one handler symbol, and the
// linker rejects the duplicate.
package main

import (
	"github.com/faultline-project/faultline/fault"
	_ "github.com/faultline-project/faultline/fault/handler/console"
	_ "github.com/faultline-project/faultline/fault/handler/halt"
)

func main() {
	fault.Raise("unreachable: this program does not link")
}
