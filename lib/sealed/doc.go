// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed provides age encryption for crash bundle export.
//
// It wraps filippo.io/age for the specific operations Faultline
// needs: generate x25519 keypairs, encrypt a bundle stream to
// multiple recipients, and decrypt a stream with a private key.
// Bundles can carry megabytes of flight data, so both directions are
// streaming: [Encrypt] layers an io.WriteCloser over the destination,
// [Decrypt] an io.Reader over the source.
//
// Recipients are age public keys (age1... format), typically the
// analysis host that will receive the bundle plus an operator escrow
// key. Private keys are held in [secret.Buffer] values backed by mmap
// memory outside the Go heap (locked against swap, excluded from core
// dumps, zeroed on Close).
//
// Key exports:
//
//   - [GenerateKeypair] -- new age x25519 keypair in a secret.Buffer
//   - [Encrypt] -- streaming encryptor to age public key recipients
//   - [Decrypt] -- streaming decryptor with a secret.Buffer key
//   - [ParsePublicKey] / [ParsePrivateKey] -- key validation
//
// Used by the bundle export and import commands.
//
// Depends on lib/secret for secure memory allocation.
package sealed
