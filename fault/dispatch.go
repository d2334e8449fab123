// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package fault

import (
	"os"
	"runtime"
	"time"
	_ "unsafe" // for go:linkname

	"github.com/faultline-project/faultline/fault/internal/faultstate"
)

// handle is the fault handler bound into the program at link time.
// This package declares the symbol but never defines it: exactly one
// handler package (fault/handler/halt, fault/handler/console, or a
// handler written by the program itself) provides the definition by
// pushing its implementation onto this symbol with //go:linkname.
//
// The linker enforces the cardinality contract. A program whose
// reachable code can call Trap and that links no handler fails to
// link with a missing-symbol relocation error; a program that links
// two handlers fails with a duplicate-symbol error. Neither mistake
// can survive into a running process.
//
//go:linkname handle
func handle(record *Record)

const repeatFaultText = "fault raised while a fault was being handled\n"

// Trap hands the record to the bound handler and never returns. It is
// the single dispatch point behind every raise helper in this package
// and may be called directly with a prebuilt record.
//
// Trap takes no locks and allocates nothing. Its first action is to
// latch the process fault state from Normal to Faulted; the latch is
// terminal, and [Faulted] observes it.
//
// Concurrency policy:
//
//   - The first faulting goroutine runs the handler. Other goroutines
//     continue to execute while it does; a library cannot stop the
//     scheduler, and every shipped handler either terminates the
//     process promptly or parks deliberately.
//   - A goroutine that faults while another goroutine's fault is
//     being handled parks forever, leaving the terminal action to the
//     handler already running.
//   - A fault raised by the handler itself (a repeat fault on the
//     same goroutine) writes a fixed line to stderr and exits with
//     code 2; there is no policy a broken handler could be trusted to
//     apply.
//
// If the handler returns, the contract is broken in a way no fallback
// policy can repair: Trap writes a fixed line to stderr and exits
// with code 2.
func Trap(record *Record) {
	goroutine := goroutineID()
	switch faultstate.Begin(goroutine) {
	case faultstate.Won:
		// Proceed to the handler below.
	case faultstate.Repeat:
		os.Stderr.WriteString(repeatFaultText)
		os.Exit(2)
	case faultstate.Concurrent:
		parkForever()
	}

	handle(record)

	os.Stderr.WriteString("fault handler returned; a handler must never return\n")
	os.Exit(2)
}

// Faulted reports whether this process has dispatched a fault. The
// transition is one-way: once Faulted returns true it never returns
// false again for the life of the process.
func Faulted() bool {
	return faultstate.Faulted()
}

// goroutineID extracts the current goroutine's id from the header
// line of its stack dump ("goroutine 18 [running]:"). This is the
// only portable way to name a goroutine and it costs a runtime.Stack
// call, so it runs exclusively on the fault path, never in normal
// operation.
func goroutineID() uint64 {
	var buf [32]byte
	n := runtime.Stack(buf[:], false)
	const prefix = len("goroutine ")
	if n <= prefix {
		return 0
	}
	var id uint64
	for _, c := range buf[prefix:n] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}

// parkForever blocks the calling goroutine without ever waking it. A
// bare select{} would trip the runtime's deadlock detector in small
// programs, so this sleeps in a loop; the timer keeps the runtime
// convinced the program is live.
func parkForever() {
	for {
		time.Sleep(time.Hour)
	}
}
