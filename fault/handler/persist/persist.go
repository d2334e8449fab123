// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package persist binds a fault handler that writes a durable crash
// record before terminating the program.
//
// Import it for effect and, optionally, configure it at startup:
//
//	import _ "github.com/faultline-project/faultline/fault/handler/persist"
//
//	func main() {
//		persist.Configure(persist.Config{
//			Flight:      flight,
//			Scrub:       scrub.Default(),
//			Compression: crashlog.CompressionLZ4,
//		})
//		...
//	}
//
// On dispatch the handler writes the diagnostic line to standard
// error, encodes a crash envelope (fault record, host metadata,
// scrubbed flight snapshot, labels) into the crash store, reports the
// record path, and then performs the configured terminal action.
// A record that cannot be written never blocks termination: the
// failure is reported on standard error and the terminal action runs
// regardless.
//
// Without Configure the handler uses the default store location, no
// flight data, no redaction, no sealing, and aborts.
package persist

import (
	"sync/atomic"
	_ "unsafe" // for go:linkname

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/fault/handler/internal/report"
	"github.com/faultline-project/faultline/fault/handler/internal/stop"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/flightrec"
	"github.com/faultline-project/faultline/lib/scrub"
	"github.com/faultline-project/faultline/lib/secret"
)

// Action selects what the handler does after the write attempt.
type Action int

const (
	// ActionAbort raises SIGABRT so the kernel can produce a core
	// dump alongside the crash record. The default.
	ActionAbort Action = iota
	// ActionPark halts the faulting goroutine forever without
	// terminating the process.
	ActionPark
	// ActionExit exits the process with status 2.
	ActionExit
)

// Config controls the persist handler. The zero value is usable.
type Config struct {
	// Dir is the crash store directory. Empty selects the default
	// location: $FAULTLINE_DIR if set, /var/lib/faultline when
	// running as root, $XDG_STATE_HOME/faultline otherwise.
	Dir string

	// Flight, when set, contributes its snapshot to the record.
	Flight *flightrec.Recorder

	// Scrub, when set, redacts the fault message and the flight
	// snapshot before encoding. Nil means no redaction; use
	// scrub.Default for the built-in rules.
	Scrub *scrub.Policy

	// Key, when set, seals the record at rest. The buffer is
	// borrowed for the life of the process, never closed.
	Key *secret.Buffer

	// Compression selects the payload compression. The zero value
	// stores the payload uncompressed; crashlog.CompressionLZ4 is
	// the usual choice on the fault path.
	Compression crashlog.CompressionTag

	// Labels are attached to every record (host role, deploy id).
	Labels map[string]string

	// Action is the terminal action after the write attempt.
	Action Action
}

var current atomic.Pointer[Config]

// Configure installs the handler configuration. Call it from main
// before any goroutine that can fault; the last call wins. The config
// is copied, so later mutation of the caller's value or label map
// does not race a dispatching handler.
func Configure(cfg Config) {
	snapshot := cfg
	if len(cfg.Labels) > 0 {
		labels := make(map[string]string, len(cfg.Labels))
		for key, value := range cfg.Labels {
			labels[key] = value
		}
		snapshot.Labels = labels
	}
	current.Store(&snapshot)
}

//go:linkname handle github.com/faultline-project/faultline/fault.handle
func handle(record *fault.Record) {
	cfg := current.Load()
	if cfg == nil {
		cfg = &Config{}
	}

	// The diagnostic line goes out first so it reaches the journal
	// even if persistence stalls on a dying disk.
	var buf [512]byte
	line := record.AppendDiagnostic(buf[:0])
	line = append(line, '\n')
	stop.Write(line)

	path, err := report.Write(record, &report.Spec{
		Dir:         cfg.Dir,
		Flight:      cfg.Flight,
		Scrub:       cfg.Scrub,
		Key:         cfg.Key,
		Compression: cfg.Compression,
		Labels:      cfg.Labels,
	})
	if err != nil {
		stop.Write([]byte("faultline: persist failed: " + err.Error() + "\n"))
	} else {
		stop.Write([]byte("faultline: crash record written to " + path + "\n"))
	}

	switch cfg.Action {
	case ActionPark:
		stop.Park()
	case ActionExit:
		stop.Exit(2)
	default:
		stop.Abort()
	}
}

// DefaultDir returns the crash store location used when Config.Dir is
// empty: $FAULTLINE_DIR if set, /var/lib/faultline for root,
// $XDG_STATE_HOME/faultline (or ~/.local/state/faultline) otherwise.
func DefaultDir() string {
	return report.DefaultDir()
}
