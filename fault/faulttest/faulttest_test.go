// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package faulttest_test

import (
	"testing"

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/fault/faulttest"
)

func TestCaptureNoFault(t *testing.T) {
	if record := faulttest.Capture(func() {}); record != nil {
		t.Fatalf("Capture of a clean function: got %v, want nil", record)
	}
}

func TestCaptureReturnsRecord(t *testing.T) {
	record := faulttest.Capture(func() {
		fault.Raise("captured")
	})
	if record == nil {
		t.Fatal("Capture: got nil for a faulting function")
	}
	if record.Message() != "captured" {
		t.Errorf("Message: got %q", record.Message())
	}
}

func TestForeignPanicPassesThrough(t *testing.T) {
	defer func() {
		recovered := recover()
		if recovered != "not a fault" {
			t.Fatalf("recovered %v, want the foreign panic value", recovered)
		}
	}()

	faulttest.Capture(func() {
		panic("not a fault")
	})
	t.Fatal("foreign panic was swallowed")
}

func TestLastAndReset(t *testing.T) {
	faulttest.Reset()
	if faulttest.Last() != nil {
		t.Fatal("Last after Reset: non-nil")
	}

	faulttest.Capture(func() { fault.Raise("one") })
	faulttest.Capture(func() { fault.Raise("two") })

	last := faulttest.Last()
	if last == nil || last.Message() != "two" {
		t.Fatalf("Last: got %v, want the most recent record", last)
	}

	faulttest.Reset()
	if faulttest.Last() != nil {
		t.Error("Last after second Reset: non-nil")
	}
	if fault.Faulted() {
		t.Error("process still faulted after Reset")
	}
}

// expectRecorder satisfies faulttest.TB and records whether Fatalf
// fired, letting Expect itself be tested.
type expectRecorder struct {
	failed  bool
	message string
}

func (r *expectRecorder) Helper() {}

func (r *expectRecorder) Fatalf(format string, args ...any) {
	r.failed = true
	r.message = format
	// Real testing.TB.Fatalf stops the goroutine; the sentinel panic
	// below gives Expect the same property so code after Fatalf does
	// not run in tests of the failure path.
	panic(r)
}

func TestExpectFailsWithoutFault(t *testing.T) {
	recorder := &expectRecorder{}
	func() {
		defer func() {
			if recovered := recover(); recovered != nil && recovered != any(recorder) {
				panic(recovered)
			}
		}()
		faulttest.Expect(recorder, func() {})
	}()

	if !recorder.failed {
		t.Fatal("Expect accepted a function that did not fault")
	}
}

func TestExpectReturnsRecord(t *testing.T) {
	record := faulttest.Expect(t, func() {
		fault.Index(5, 5)
	})
	if record.Kind() != fault.KindIndex {
		t.Errorf("Kind: got %v, want %v", record.Kind(), fault.KindIndex)
	}
}
