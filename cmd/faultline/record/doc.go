// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package record implements the faultline subcommands that operate on
// individual crash records: inspect, list, flight, and annotate.
//
// Commands accept a record argument in three forms: a record name from
// the configured store (with or without the .crash suffix), the word
// "latest" for the newest record, or a filesystem path to a crash file
// received from somewhere else. Path arguments are read in place, so a
// record mailed by an operator can be inspected without importing it.
package record
