// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package crashlog defines the crash file format and the on-disk crash
// store.
//
// A crash file is a single fault captured as a CBOR envelope (kind,
// message, source location, process identity, labels, and optionally
// the flight recorder tail), wrapped in a fixed binary header:
//
//	[0:8]   magic: "FAULTLN" + format version byte
//	[8]     compression tag (none, lz4, zstd)
//	[9]     encryption tag (none, xchacha20poly1305)
//	[10:12] reserved, zero
//	[12:16] stored payload size, uint32 little endian
//	[16:20] envelope size before compression, uint32 little endian
//	[20:24] reserved, zero
//	[24:56] keyed BLAKE3 digest of header prefix and payload
//	[56:]   payload
//
// The digest detects corruption and truncation; it is keyed with a
// fixed public domain key, so it is not an authenticator. Sealed files
// get their integrity and confidentiality from XChaCha20-Poly1305,
// with the format version and both tag bytes bound as additional
// authenticated data.
//
// Files are written atomically (temporary file, fsync, rename, parent
// directory sync), so a reader never observes a partial crash file
// even when the writer dies mid-fault.
package crashlog
