// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package fault is the dispatch core of Faultline: fault records, the
// raise helpers that produce them, and a dispatch point whose handler
// is bound at link time.
//
// A fault is a condition the program cannot continue from: an index
// out of bounds, division by zero, a violated invariant, an explicit
// abort. Raising one builds an immutable [Record] (kind, optional
// message, optional source location) and hands it to the process's
// fault handler via [Trap], which never returns. What happens next is
// entirely the handler's policy: park, abort with a core dump, write
// a crash record, reset the process.
//
// # Handler binding
//
// The handler is not registered at runtime; it is a linker symbol
// with exactly one definition per program. Selecting a handler is an
// import:
//
//	import _ "github.com/faultline-project/faultline/fault/handler/halt"
//
// Linking zero handlers (while a raise site is reachable) or two
// handlers is a build failure, reported by the linker as a missing or
// duplicated symbol. There is no API to install, replace, or chain
// handlers at runtime, so a running process's fault policy is exactly
// what its build linked.
//
// A program can also provide its own policy without a separate
// package by pushing a definition onto the dispatch symbol:
//
//	//go:linkname handle github.com/faultline-project/faultline/fault.handle
//	func handle(record *fault.Record) {
//		// render record, then terminate or park; never return
//	}
//
// Handlers must be callable from badly broken program states: work
// with the record given, avoid locks shared with normal operation,
// and do not return. If one returns anyway, [Trap] exits the process
// with code 2.
//
// # Fault state
//
// The first raise latches the process from Normal to Faulted, a
// one-way transition visible through [Faulted]. A fault raised while
// the handler runs exits immediately; faults on other goroutines park
// while the winning handler works toward its terminal action. Other
// goroutines keep running during handler execution; the shipped
// handlers all terminate the process or park deliberately, so the
// window is short.
//
// # Builtin panics
//
// This package does not intercept Go's builtin panic machinery. It is
// for programs that route their fatal paths through explicit guards
// (Index, Quotient, Assert, ...) precisely so the fatal policy is
// linkable, auditable, and swappable per build.
//
// # Stripped builds
//
// Building with -tags faultstrip removes fault messages and location
// capture from the binary; records keep only their kind, and
// diagnostics render the kind's fixed fallback text. The dispatch and
// binding semantics are unchanged.
//
// The package has no dependencies outside the standard library, so
// the dispatch path stays linkable into the smallest probe programs
// and the cheapest static binaries. Raising allocates the record and
// its message; Trap itself does not allocate.
package fault
