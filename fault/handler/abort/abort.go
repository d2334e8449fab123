// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package abort binds a fault handler that writes the diagnostic line
// to standard error and aborts the process with SIGABRT. Supervised
// deployments prefer this over parking: the supervisor sees the death
// and restarts the program instead of keeping a wedged process alive.
//
// Import it for effect:
//
//	import _ "github.com/faultline-project/faultline/fault/handler/abort"
package abort

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
	stop.Abort()
}
