// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Faultline-demo dispatches a deliberate fault so handler binding can
// be watched end to end. It reads slot 4 of a 3-element array; the
// checked lookup raises an index fault and the bound handler decides
// what the crash looks like.
//
// The handler is chosen at build time:
//
//	go build ./cmd/faultline-demo                          # console: diagnostic on stderr, then parks
//	go build -tags faultdemo_halt ./cmd/faultline-demo     # halt: no output at all, parks
//	go build -tags faultdemo_persist ./cmd/faultline-demo  # persist: writes a crash record, then exits
//
// Exactly one handler links into each variant. A build that imports
// two handlers, or none, fails at link time rather than producing a
// binary with ambiguous crash behavior.
//
// An optional argument overrides the slot, so an in-range read
// ("faultline-demo 1") runs to completion.
package main
