// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package faulttest binds a fault handler that hands control back to
// the test that raised the fault.
//
// Importing this package into a test binary binds its handler (the
// same link-time contract as any handler package, so it cannot
// coexist with a production handler in one binary). The handler
// records the fault and unwinds with a private panic value that
// [Capture] recognizes; the process fault latch is reset after each
// captured fault so one test binary can exercise many faults.
//
//	record := faulttest.Expect(t, func() {
//		fault.Index(4, 3)
//	})
//	if record.Kind() != fault.KindIndex { ...
//
// Nothing here is usable in production builds: unwinding out of a
// fault handler and unlatching the fault state exist only so faults
// can be tested at all.
package faulttest

import (
	"sync"
	_ "unsafe" // for go:linkname

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/fault/internal/faultstate"
)

// sentinel is the panic payload the handler unwinds with. The type is
// unexported so a foreign panic can never be mistaken for a captured
// fault.
type sentinel struct {
	record *fault.Record
}

var (
	mu   sync.Mutex
	last *fault.Record
)

// handle is pushed onto the fault dispatch symbol at link time.
//
//go:linkname handle github.com/faultline-project/faultline/fault.handle
func handle(record *fault.Record) {
	mu.Lock()
	last = record
	mu.Unlock()
	panic(sentinel{record: record})
}

// TB is the subset of testing.TB that Expect needs. Declared locally
// so this package never imports testing into a test binary's
// dependency graph on its own.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Capture runs fn and returns the record of the fault it raised, or
// nil when fn returns without faulting. The fault latch is unlatched
// before Capture returns, so callers may capture any number of
// faults in sequence. Panics that are not faults pass through
// untouched.
func Capture(fn func()) (record *fault.Record) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		s, ok := recovered.(sentinel)
		if !ok {
			panic(recovered)
		}
		faultstate.Reset()
		record = s.record
	}()
	fn()
	return nil
}

// Expect runs fn and fails the test unless it raises a fault. The
// record of the fault is returned for further assertions.
func Expect(t TB, fn func()) *fault.Record {
	t.Helper()
	record := Capture(fn)
	if record == nil {
		t.Fatalf("expected a fault, but none was raised")
	}
	return record
}

// Last returns the most recently captured record, or nil when no
// fault has been captured since the last Reset.
func Last() *fault.Record {
	mu.Lock()
	defer mu.Unlock()
	return last
}

// Reset clears the captured record and unlatches the process fault
// state.
func Reset() {
	mu.Lock()
	last = nil
	mu.Unlock()
	faultstate.Reset()
}
