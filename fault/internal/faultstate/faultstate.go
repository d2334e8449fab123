// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package faultstate holds the process-wide fault latch shared by the
// dispatch point and the faulttest package. It is internal to the
// fault subtree: production code has no way to unlatch a faulted
// process, while faulttest (which must run many faults through one
// test binary) resets the latch after capturing each record.
package faultstate

import "sync/atomic"

// Outcome is the result of attempting to claim the fault latch.
type Outcome uint8

const (
	// Won means the caller is the first faulting goroutine and must
	// run the handler.
	Won Outcome = iota

	// Repeat means the claiming goroutine already holds the latch: a
	// fault was raised while its fault was being handled.
	Repeat

	// Concurrent means a different goroutine holds the latch and its
	// handler is still working toward the terminal action.
	Concurrent
)

var (
	faulted atomic.Bool
	holder  atomic.Uint64
)

// Begin attempts to move the process from Normal to Faulted on behalf
// of the given goroutine. The transition is one-way; only the first
// caller wins. Begin never blocks.
func Begin(goroutine uint64) Outcome {
	if faulted.CompareAndSwap(false, true) {
		holder.Store(goroutine)
		return Won
	}
	if holder.Load() == goroutine {
		return Repeat
	}
	return Concurrent
}

// Faulted reports whether the process has entered the Faulted state.
func Faulted() bool {
	return faulted.Load()
}

// Reset unlatches the process. Only the faulttest handler calls this,
// after it has captured a record and unwound; nothing in a production
// build does.
func Reset() {
	holder.Store(0)
	faulted.Store(false)
}
