// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package halt

import (
	"testing"

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/fault/handler/internal/stop"
)

func TestHandleParks(t *testing.T) {
	parked := false
	restore := stop.SwapPark(func() { parked = true })
	defer restore()

	handle(fault.NewRecord(fault.KindPanic, "quiet", "main.go", 3, 1))

	if !parked {
		t.Fatal("handler returned without parking")
	}
}
