// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/faultline-project/faultline/fault"
)

func main() {
	out := setup()

	// The default slot is one past the end of the array below.
	slot := 4
	if len(os.Args) > 1 {
		parsed, err := strconv.Atoi(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "faultline-demo: slot %q is not a number\n", os.Args[1])
			os.Exit(2)
		}
		slot = parsed
	}

	sensors := [3]int{12, 47, 9}
	fmt.Fprintf(out, "polling %d sensors\n", len(sensors))

	value := sensors[fault.Index(slot, len(sensors))]
	fmt.Fprintf(out, "sensor %d reads %d\n", slot, value)
}
