// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package console binds a fault handler that writes the diagnostic
// line to standard error and parks the faulting goroutine.
//
// Import it for effect:
//
//	import _ "github.com/faultline-project/faultline/fault/handler/console"
//
// The line has the form
//
//	panicked at '<message>', <file>:<line>:<column>
//
// and is rendered into a stack buffer and written with a raw syscall,
// so the handler allocates nothing and takes no locks on its way out.
package console

import (
	_ "unsafe" // for go:linkname

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/fault/handler/internal/stop"
)

//go:linkname handle github.com/faultline-project/faultline/fault.handle
func handle(record *fault.Record) {
	var buf [512]byte
	line := record.AppendDiagnostic(buf[:0])
	line = append(line, '\n')
	stop.Write(line)
	stop.Park()
}
