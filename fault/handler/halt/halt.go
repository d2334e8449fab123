// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package halt binds a fault handler that discards the record and
// parks the faulting goroutine forever. Nothing is written anywhere;
// this is the handler for targets where standard error does not exist
// or must stay untouched.
//
// Import it for effect:
//
//	import _ "github.com/faultline-project/faultline/fault/handler/halt"
package halt

import (
	_ "unsafe" // for go:linkname

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/fault/handler/internal/stop"
)

//go:linkname handle github.com/faultline-project/faultline/fault.handle
func handle(*fault.Record) {
	stop.Park()
}
