// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package reset binds a fault handler that recovers by restarting:
// persist the crash record (best effort), then replace the process
// image with a fresh copy of the same executable, argv and
// environment preserved.
//
// Import it for effect:
//
//	import _ "github.com/faultline-project/faultline/fault/handler/reset"
//
// Restart-on-fault turns a crash into downtime measured in
// milliseconds, but it also turns a deterministic crash into a boot
// loop. A guard state file counts recent resets; when more than
// MaxResets happen within Window the handler aborts instead, leaving
// the crash records behind for diagnosis. The guard file lives next
// to the crash records and survives the exec.
package reset

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
	_ "unsafe" // for go:linkname

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/fault/handler/internal/report"
	"github.com/faultline-project/faultline/fault/handler/internal/stop"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/flightrec"
	"github.com/faultline-project/faultline/lib/scrub"
	"github.com/faultline-project/faultline/lib/secret"
)

const (
	// DefaultMaxResets is the reset budget within the window.
	DefaultMaxResets = 3
	// DefaultWindow is the interval over which resets are counted.
	DefaultWindow = 5 * time.Minute

	stateFileName = "reset.state"
)

// Config controls the reset handler. The zero value is usable.
type Config struct {
	// Dir is the crash store directory. Empty selects the default
	// location (see the persist handler).
	Dir string

	// Flight, when set, contributes its snapshot to the record.
	Flight *flightrec.Recorder

	// Scrub, when set, redacts the fault message and the flight
	// snapshot before encoding.
	Scrub *scrub.Policy

	// Key, when set, seals the record at rest.
	Key *secret.Buffer

	// Compression selects the payload compression.
	Compression crashlog.CompressionTag

	// Labels are attached to every record.
	Labels map[string]string

	// StateFile is the boot-loop guard path. Empty means
	// <dir>/reset.state.
	StateFile string

	// MaxResets is the reset budget within Window. Zero means
	// DefaultMaxResets.
	MaxResets int

	// Window is the interval over which resets are counted. Zero
	// means DefaultWindow.
	Window time.Duration
}

var current atomic.Pointer[Config]

// Configure installs the handler configuration. Call it from main
// before any goroutine that can fault; the last call wins.
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

	var buf [512]byte
	line := record.AppendDiagnostic(buf[:0])
	line = append(line, '\n')
	stop.Write(line)

	// The record is written before the guard decision so a boot loop
	// leaves one crash file per iteration, not just the final one.
	spec := &report.Spec{
		Dir:         cfg.Dir,
		Flight:      cfg.Flight,
		Scrub:       cfg.Scrub,
		Key:         cfg.Key,
		Compression: cfg.Compression,
		Labels:      cfg.Labels,
	}
	if path, err := report.Write(record, spec); err != nil {
		stop.Write([]byte("faultline: persist failed: " + err.Error() + "\n"))
	} else {
		stop.Write([]byte("faultline: crash record written to " + path + "\n"))
	}

	budget := cfg.MaxResets
	if budget <= 0 {
		budget = DefaultMaxResets
	}
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}
	statePath := cfg.StateFile
	if statePath == "" {
		statePath = filepath.Join(spec.StoreDir(), stateFileName)
	}

	state := loadGuard(statePath)
	if !state.admit(time.Now(), window, budget) {
		stop.Write([]byte("faultline: reset budget exhausted, aborting\n"))
		stop.Abort()
		return
	}
	if err := saveGuard(statePath, state); err != nil {
		// A reset the guard cannot record would hide a boot loop.
		stop.Write([]byte("faultline: reset guard unwritable: " + err.Error() + "\n"))
		stop.Abort()
		return
	}

	executable, err := os.Executable()
	if err != nil {
		stop.Write([]byte("faultline: cannot locate executable: " + err.Error() + "\n"))
		stop.Abort()
		return
	}
	stop.Write([]byte("faultline: resetting " + executable + "\n"))
	if err := stop.Exec(executable, os.Args, os.Environ()); err != nil {
		stop.Write([]byte("faultline: exec failed: " + err.Error() + "\n"))
	}
	stop.Abort()
}
