// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package crashindex maintains a SQLite index over a crash record
// store.
//
// The .crash files on disk are the source of truth; the index is
// derived state that makes them queryable. The collector adds a row
// for every record it stores, and query commands filter and aggregate
// rows instead of decoding every file on every invocation. A lost or
// stale index is repaired by [Index.Rescan], which walks the store and
// reconciles the table against the files that actually exist.
//
// The index is a single crashes table. Crash records arrive at human
// rates (a handful per incident, not thousands per second), so the
// row count stays small enough that one table with a few indexes
// outlives any need for time partitioning.
//
// Writers open the index read-write; query tooling opens it with
// ReadOnly so an inspection can never mutate collector-owned state.
package crashindex
