// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle packs crash records into a portable archive for
// moving them off the machine that captured them: a zstd-compressed
// tar of the raw crash files, their note sidecars, and a manifest,
// optionally sealed to age recipients.
//
// Records travel byte-for-byte: a sealed crash file stays sealed
// inside the bundle, so a box that holds crashes it cannot decrypt
// can still export them to the host that can.
package bundle
