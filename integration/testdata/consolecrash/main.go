// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Probe program that reads one element past the end of a three
// element array through the checked subscript, with the console
// handler bound. The handler writes one diagnostic line to standard
// error and parks the goroutine; nothing is ever written to standard
// output.
package main

import (
	"github.com/faultline-project/faultline/fault"
	_ "github.com/faultline-project/faultline/fault/handler/console"
)

// slot lives outside main so the lookup below stays a runtime
// decision even under aggressive inlining.
var slot = 4

func main() {
	sensors := [3]int{12, 47, 9}
	_ = sensors[fault.Index(slot, len(sensors))]
}
