// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Faultline-collectd is the host-local crash collector. It listens on
// a Unix socket for crash envelopes relayed by dying processes, writes
// each one durably into the crash store, and keeps a SQLite index of
// what it has stored for the faultline CLI to query.
//
// # Relay Protocol
//
// A crashing process connects, writes exactly one length-prefixed CBOR
// envelope frame ([crashlog.WriteWire]), and waits for a single answer
// byte. The collector answers [crashlog.Ack] only after the record has
// been fsynced into the store; any failure answers [crashlog.Nak] and
// the sender falls back to its own local write. The sender is mid-crash
// and about to die, so the whole exchange is one frame, one byte, close.
//
// # Scrubbing
//
// The collector does not trust senders to have scrubbed: the configured
// scrub policy is applied to the message and flight recorder tail of
// every envelope before it touches disk. Senders scrub too (their
// in-process policy may differ), so a secret only survives if both
// policies miss it.
//
// # Retention and the Index
//
// After each accepted record the store is pruned to the configured
// retention count and the index is updated to match. The index is
// derived state: on startup (when rescan_on_start is set, the default
// in production) the collector reconciles it against the store
// directory, so a deleted database or a crash mid-update heals on the
// next restart.
package main
