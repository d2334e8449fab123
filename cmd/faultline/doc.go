// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Faultline is the operator CLI for crash records. It reads the crash
// store that fault handlers and the collector write, and offers:
//
//   - list / inspect / flight: examine individual records
//   - view: an interactive full-screen browser
//   - scan / history: a SQLite index over the store for querying
//     crashes by kind, executable, label, and time
//   - annotate: triage notes kept next to the records
//   - export / import / keygen: sealed bundles for moving records
//     between machines
//   - demo: run the faultline-demo program and relay its crash
//
// Every command reads the store location from --dir, the config file
// named by FAULTLINE_CONFIG, or the built-in defaults, in that order.
// Exit codes distinguish validation errors (2), missing resources (3),
// conflicts (4), and transient failures (5) from internal errors (1).
package main
