// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashlog

import (
	"os"
	"runtime"
	"time"

	"github.com/faultline-project/faultline/fault"
)

// EnvelopeSchema is the envelope schema version. Bumped when a field
// changes meaning; adding optional fields does not require a bump
// because the CBOR decoder ignores unknown fields.
const EnvelopeSchema = 1

// Envelope is the decoded content of a crash file: one fault plus the
// identity of the process that raised it. Serialized as CBOR on disk
// and as JSON in CLI output, so fields carry json tags.
type Envelope struct {
	// Schema is the envelope schema version.
	Schema int `json:"schema"`

	// CapturedAt is when the fault was captured, in UTC.
	CapturedAt time.Time `json:"captured_at"`

	// Hostname, Executable, and PID identify the process. Executable
	// is the absolute path where the running binary was started from.
	Hostname   string `json:"hostname,omitempty"`
	Executable string `json:"executable,omitempty"`
	PID        int    `json:"pid,omitempty"`

	// Runtime is the Go runtime version the binary was built with; OS
	// and Arch are its target platform.
	Runtime string `json:"runtime,omitempty"`
	OS      string `json:"os,omitempty"`
	Arch    string `json:"arch,omitempty"`

	// Kind, Message, File, Line, and Column mirror the fault record.
	// Message and the location fields are empty in stripped builds.
	Kind    fault.Kind `json:"kind"`
	Message string     `json:"message,omitempty"`
	File    string     `json:"file,omitempty"`
	Line    int        `json:"line,omitempty"`
	Column  int        `json:"column,omitempty"`

	// Labels are free-form deployment labels (region, build channel,
	// fleet name) configured on the handler that wrote the file.
	Labels map[string]string `json:"labels,omitempty"`

	// Flight is the tail of the flight recorder at capture time,
	// already scrubbed. Empty when no recorder was attached.
	Flight []byte `json:"flight,omitempty"`
}

// NewEnvelope captures the current process identity around a fault
// record. Fields that cannot be determined (hostname, executable path)
// are left empty rather than failing: a crash writer has no better
// option than recording what it can.
func NewEnvelope(record *fault.Record) *Envelope {
	hostname, _ := os.Hostname()
	executable, _ := os.Executable()
	return &Envelope{
		Schema:     EnvelopeSchema,
		CapturedAt: time.Now().UTC(),
		Hostname:   hostname,
		Executable: executable,
		PID:        os.Getpid(),
		Runtime:    runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Kind:       record.Kind(),
		Message:    record.Message(),
		File:       record.File(),
		Line:       record.Line(),
		Column:     record.Column(),
	}
}

// Record reconstructs the fault record carried by the envelope.
func (e *Envelope) Record() *fault.Record {
	return fault.NewRecord(e.Kind, e.Message, e.File, e.Line, e.Column)
}

// Diagnostic returns the single-line diagnostic form of the carried
// fault.
func (e *Envelope) Diagnostic() string {
	return e.Record().Diagnostic()
}
