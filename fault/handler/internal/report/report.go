// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package report builds and stores crash records on behalf of the
// terminating handlers.
//
// The persist, reset, and relay handlers all end the same way: turn
// the fault record into a crash envelope, redact it, and write it to
// the crash store. Each of those packages binds the single dispatch
// symbol, so none of them can import another; the shared tail lives
// here instead.
package report

import (
	"os"
	"path/filepath"

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/flightrec"
	"github.com/faultline-project/faultline/lib/scrub"
	"github.com/faultline-project/faultline/lib/secret"
)

// Spec describes one durable crash report.
type Spec struct {
	Dir         string
	Flight      *flightrec.Recorder
	Scrub       *scrub.Policy
	Key         *secret.Buffer
	Compression crashlog.CompressionTag
	Labels      map[string]string
}

// StoreDir resolves the crash store directory: Dir when set,
// DefaultDir otherwise.
func (s *Spec) StoreDir() string {
	if s.Dir != "" {
		return s.Dir
	}
	return DefaultDir()
}

// Envelope builds the redacted crash envelope for record: host
// metadata, labels, the scrubbed message, and the scrubbed flight
// snapshot when a recorder is attached.
func Envelope(record *fault.Record, spec *Spec) *crashlog.Envelope {
	envelope := crashlog.NewEnvelope(record)
	envelope.Labels = spec.Labels
	envelope.Message = spec.Scrub.ApplyString(envelope.Message)
	if spec.Flight != nil {
		envelope.Flight = spec.Scrub.Apply(spec.Flight.Snapshot())
	}
	return envelope
}

// Write persists the record per spec and returns the full path of the
// new crash file.
func Write(record *fault.Record, spec *Spec) (string, error) {
	return Store(Envelope(record, spec), spec)
}

// Store persists a prebuilt envelope per spec. Used directly by the
// relay handler, which builds the envelope once and stores it only
// when the collector is unreachable.
func Store(envelope *crashlog.Envelope, spec *Spec) (string, error) {
	store, err := crashlog.OpenStore(spec.StoreDir())
	if err != nil {
		return "", err
	}
	name, err := store.Write(envelope, crashlog.Options{
		Compression: spec.Compression,
		Key:         spec.Key,
	})
	if err != nil {
		return "", err
	}
	return filepath.Join(store.Dir(), name), nil
}

// DefaultDir returns the crash store location used when Spec.Dir is
// empty: $FAULTLINE_DIR if set, /var/lib/faultline for root,
// $XDG_STATE_HOME/faultline (or ~/.local/state/faultline) otherwise.
func DefaultDir() string {
	if dir := os.Getenv("FAULTLINE_DIR"); dir != "" {
		return dir
	}
	if os.Geteuid() == 0 {
		return "/var/lib/faultline"
	}
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "faultline")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "faultline")
	}
	return "/var/lib/faultline"
}
