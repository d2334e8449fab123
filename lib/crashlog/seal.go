// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashlog

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/faultline-project/faultline/lib/secret"
)

// KeySize is the size in bytes of the crash store sealing key.
const KeySize = 32

// LoadKeyFile reads a hex-encoded sealing key from path. Surrounding
// whitespace is tolerated; the decoded key must be exactly KeySize
// bytes. The caller owns the returned buffer and must Close it.
func LoadKeyFile(path string) (*secret.Buffer, error) {
	encoded, err := secret.ReadFromPath(path)
	if err != nil {
		return nil, err
	}
	defer encoded.Close()

	raw := make([]byte, hex.DecodedLen(encoded.Len()))
	if _, err := hex.Decode(raw, encoded.Bytes()); err != nil {
		secret.Zero(raw)
		return nil, fmt.Errorf("decoding hex key: %w", err)
	}
	if len(raw) != KeySize {
		secret.Zero(raw)
		return nil, fmt.Errorf("key is %d bytes, want %d", len(raw), KeySize)
	}

	// NewFromBytes copies into mmap-backed memory and zeros raw.
	return secret.NewFromBytes(raw)
}

// EncryptionTag identifies the payload sealing algorithm. Stored in
// the crash file header (1 byte). Format constants: changing them
// breaks crash file compatibility.
type EncryptionTag uint8

const (
	// EncryptionNone indicates a plain payload.
	EncryptionNone EncryptionTag = 0

	// EncryptionXChaCha20 indicates XChaCha20-Poly1305 with a key
	// derived from the store sealing key via HKDF-SHA256.
	EncryptionXChaCha20 EncryptionTag = 1
)

// String returns the human-readable name of an encryption tag.
func (tag EncryptionTag) String() string {
	switch tag {
	case EncryptionNone:
		return "none"
	case EncryptionXChaCha20:
		return "xchacha20poly1305"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// sealOverhead is the byte overhead per sealed payload: 24-byte
// XChaCha20-Poly1305 nonce + 16-byte Poly1305 tag.
const sealOverhead = chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// hkdfInfoSeal is the "info" parameter to HKDF-SHA256 when deriving
// the payload sealing key, providing domain separation from any other
// use of the same input key. Changing it invalidates all sealed crash
// files.
var hkdfInfoSeal = []byte("faultline.crashlog.seal.v1")

// seal encrypts payload with XChaCha20-Poly1305 under a key derived
// from key, producing [nonce | ciphertext+tag]. The key buffer is
// borrowed and NOT closed.
func seal(payload []byte, key *secret.Buffer, aad []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating random nonce: %w", err)
	}

	output := make([]byte, chacha20poly1305.NonceSizeX, chacha20poly1305.NonceSizeX+len(payload)+aead.Overhead())
	copy(output, nonce[:])
	return aead.Seal(output, nonce[:], payload, aad), nil
}

// open decrypts a payload produced by seal. The key buffer is borrowed
// and NOT closed.
func open(sealed []byte, key *secret.Buffer, aad []byte) ([]byte, error) {
	if len(sealed) < sealOverhead {
		return nil, fmt.Errorf("sealed payload is %d bytes, minimum is %d (nonce + tag)",
			len(sealed), sealOverhead)
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := sealed[:chacha20poly1305.NonceSizeX]
	ciphertext := sealed[chacha20poly1305.NonceSizeX:]

	payload, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("AEAD decryption failed (wrong key or tampered data): %w", err)
	}
	return payload, nil
}

// newAEAD derives the sealing key from key via HKDF-SHA256 and builds
// the XChaCha20-Poly1305 cipher. The derived key lives in guarded
// memory only for the duration of the call.
func newAEAD(key *secret.Buffer) (cipher.AEAD, error) {
	derived, err := deriveSealKey(key)
	if err != nil {
		return nil, err
	}
	defer derived.Close()

	aead, err := chacha20poly1305.NewX(derived.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	return aead, nil
}

// deriveSealKey is the HKDF-SHA256 derivation of the payload sealing
// key. The salt is nil: the input key is expected to be uniformly
// random already (generated, not a passphrase), so HKDF's extract
// phase with nil salt is appropriate per RFC 5869. The returned Buffer
// must be closed by the caller.
func deriveSealKey(key *secret.Buffer) (*secret.Buffer, error) {
	reader := hkdf.New(sha256.New, key.Bytes(), nil, hkdfInfoSeal)
	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		secret.Zero(derived)
		return nil, fmt.Errorf("HKDF key derivation failed: %w", err)
	}
	// NewFromBytes copies into mmap and zeros the heap slice.
	return secret.NewFromBytes(derived)
}
