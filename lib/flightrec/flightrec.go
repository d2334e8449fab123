// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package flightrec keeps a bounded in-memory ring of the program's
// most recent output so fault handlers can embed it in crash records.
//
// A Recorder is wired under a log or output stream once, at startup,
// via TeeWriter:
//
//	flight := flightrec.New(flightrec.DefaultCapacity)
//	logger := slog.New(slog.NewTextHandler(flight.TeeWriter(os.Stderr), nil))
//
// and then forgotten about. When a fault dispatches, the persist
// handler calls Snapshot and stores whatever the ring still holds:
// the newest bytes survive, the oldest are silently dropped, so the
// snapshot is the tail of the program's activity leading up to the
// fault.
//
// The recorder never raises faults of its own and holds its lock only
// for the duration of a memory copy, so snapshotting from inside a
// fault handler is safe.
package flightrec

import (
	"io"
	"sync"
)

// DefaultCapacity is the default ring capacity in bytes. 64 KB holds
// the last few hundred log lines of a typical service, which is
// enough context to reconstruct what led to a fault without bloating
// every crash record.
const DefaultCapacity = 64 * 1024

// Recorder is a fixed-size circular buffer that stores raw output
// bytes with sequence offset tracking. Bytes are kept verbatim,
// terminal escape sequences included, so viewers can choose between
// faithful replay and stripped text.
//
// The recorder tracks a monotonically increasing byte offset so a
// caller can ask for "everything since offset N" and tell from the
// result whether history was lost in between. New writes overwrite
// the oldest data when the ring is full.
//
// All methods are safe for concurrent use.
type Recorder struct {
	mutex    sync.Mutex
	data     []byte
	capacity int
	// writePos is the next position to write within the ring
	// (0 to capacity-1).
	writePos int
	// total is the total number of bytes ever written. The current
	// ring contents span from offset (total - stored) to total,
	// where stored = min(total, capacity).
	total uint64
}

// New creates a recorder with the given capacity in bytes.
// Non-positive capacities are replaced with DefaultCapacity.
func New(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{
		data:     make([]byte, capacity),
		capacity: capacity,
	}
}

// Write appends bytes to the ring, advancing the sequence offset and
// overwriting the oldest data if the ring is full. It implements
// io.Writer and never fails.
func (rec *Recorder) Write(p []byte) (int, error) {
	rec.mutex.Lock()
	defer rec.mutex.Unlock()

	for offset := 0; offset < len(p); {
		available := rec.capacity - rec.writePos
		chunk := len(p) - offset
		if chunk > available {
			chunk = available
		}
		copy(rec.data[rec.writePos:rec.writePos+chunk], p[offset:offset+chunk])
		rec.writePos = (rec.writePos + chunk) % rec.capacity
		offset += chunk
	}
	rec.total += uint64(len(p))
	return len(p), nil
}

// ReadFrom returns a copy of all bytes written since the given
// sequence offset. If the offset is older than the ring's oldest
// retained data, returns everything currently retained (the caller
// missed some history). Returns nil if offset is at or beyond the
// current write offset.
func (rec *Recorder) ReadFrom(offset uint64) []byte {
	rec.mutex.Lock()
	defer rec.mutex.Unlock()

	if offset >= rec.total {
		return nil
	}

	stored := rec.total
	if stored > uint64(rec.capacity) {
		stored = uint64(rec.capacity)
	}
	oldest := rec.total - stored

	// Clamp requests older than what we still have.
	readOffset := offset
	if readOffset < oldest {
		readOffset = oldest
	}

	count := rec.total - readOffset
	if count == 0 {
		return nil
	}

	result := make([]byte, count)

	// writePos points to the next write location. Retained data runs
	// from (writePos - stored) to writePos, wrapping around.
	readPos := (rec.writePos - int(stored) + int(readOffset-oldest)) % rec.capacity
	if readPos < 0 {
		readPos += rec.capacity
	}

	for copied := 0; copied < int(count); {
		available := rec.capacity - readPos
		chunk := int(count) - copied
		if chunk > available {
			chunk = available
		}
		copy(result[copied:copied+chunk], rec.data[readPos:readPos+chunk])
		readPos = (readPos + chunk) % rec.capacity
		copied += chunk
	}

	return result
}

// Snapshot returns a copy of everything the recorder currently
// retains, oldest byte first, or nil when nothing has been written.
// The result shares no storage with the ring and is safe to embed in
// a crash envelope.
func (rec *Recorder) Snapshot() []byte {
	return rec.ReadFrom(0)
}

// CurrentOffset returns the total number of bytes ever written.
// Callers that drain the recorder incrementally store this offset and
// pass it to ReadFrom later; a gap between the stored offset and the
// oldest retained byte means history was dropped.
func (rec *Recorder) CurrentOffset() uint64 {
	rec.mutex.Lock()
	defer rec.mutex.Unlock()
	return rec.total
}

// Capacity returns the ring capacity in bytes.
func (rec *Recorder) Capacity() int {
	return rec.capacity
}

// TeeWriter returns a writer that records every write into the
// recorder and then forwards it to w. The recorder is fed first, so
// the flight data is complete even when the underlying writer fails
// or writes short; the returned writer reports w's count and error.
func (rec *Recorder) TeeWriter(w io.Writer) io.Writer {
	return &teeWriter{rec: rec, out: w}
}

type teeWriter struct {
	rec *Recorder
	out io.Writer
}

func (t *teeWriter) Write(p []byte) (int, error) {
	t.rec.Write(p)
	return t.out.Write(p)
}
