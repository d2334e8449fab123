// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Probe program that makes the same out of range read as the console
// probe but binds the halt handler. The process writes nothing to
// either stream and stays parked until killed from outside.
package main

import (
	"github.com/faultline-project/faultline/fault"
	_ "github.com/faultline-project/faultline/fault/handler/halt"
)

var slot = 4

func main() {
	sensors := [3]int{12, 47, 9}
	_ = sensors[fault.Index(slot, len(sensors))]
}
