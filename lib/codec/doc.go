// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Faultline's standard CBOR encoding configuration.
//
// Faultline uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: CLI --json output, scrub policy
//     files, and the collector's status endpoint.
//   - CBOR for internal formats: the crash file envelope, the relay
//     socket protocol, and the restart guard state file.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every Faultline package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, a property the crash file format depends on: the envelope's
// authentication digest is computed over encoded bytes.
//
// For buffer-oriented operations (crash files, state files):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (relay sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR. It will
//     never be marshaled to JSON or interact with CLI tooling.
//     Examples: the restart guard state file, relay acknowledgements.
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor`
//     tags are absent, so a single `json` tag controls field naming
//     and omitempty for both formats. Examples: the crash envelope
//     (CBOR on disk, JSON in CLI output) and index scan summaries.
//
// Never use both `cbor` and `json` tags on the same field. The tag
// choice documents the contract; doubling up is noise that obscures
// whether a type participates in JSON serialization.
package codec
