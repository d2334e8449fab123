// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/faultline-project/faultline/lib/secret"
)

// Keypair holds an age x25519 keypair. The private key is stored in a
// secret.Buffer (mmap-backed, locked against swap, excluded from core
// dumps). The public key is a plain string (safe to publish).
//
// The caller must call Close when the keypair is no longer needed.
type Keypair struct {
	// PrivateKey is the secret key in AGE-SECRET-KEY-1... format,
	// stored in mmap memory outside the Go heap. Must never be
	// logged, stored in plaintext on disk, or included in CLI
	// arguments.
	PrivateKey *secret.Buffer

	// PublicKey is the corresponding public key in age1... format.
	// Safe to publish (bundle recipients quote it on the command
	// line).
	PublicKey string
}

// Close releases the private key memory (zeros, unlocks, unmaps).
// Idempotent; safe to call multiple times.
func (k *Keypair) Close() error {
	if k.PrivateKey != nil {
		return k.PrivateKey.Close()
	}
	return nil
}

// GenerateKeypair generates a new age x25519 keypair. The private key
// is returned in a secret.Buffer; write it to a 0600 file or a secret
// manager, never to the terminal of a shared host.
//
// The caller must call Close on the returned Keypair when done.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age keypair: %w", err)
	}

	// Move the private key string into mmap-backed memory immediately.
	privateKeyString := identity.String()
	privateKeyBytes := []byte(privateKeyString)
	privateKey, err := secret.NewFromBytes(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}
	// privateKeyBytes is zeroed by NewFromBytes. privateKeyString is
	// on the heap and will be GC'd, unavoidable since
	// age.GenerateX25519Identity returns a struct with string
	// methods. The mmap buffer is the durable copy.

	return &Keypair{
		PrivateKey: privateKey,
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// Encrypt returns a WriteCloser that encrypts everything written to
// it to the given recipients (age1... public keys) and writes the
// ciphertext to dst. The caller must Close the returned writer to
// flush the final chunk; closing it does not close dst.
//
// At least one recipient is required. For crash bundles, recipients
// are typically the analysis host's public key plus an operator
// escrow key.
func Encrypt(dst io.Writer, recipientKeys []string) (io.WriteCloser, error) {
	if len(recipientKeys) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	writer, err := age.Encrypt(dst, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	return writer, nil
}

// Decrypt returns a Reader that decrypts the age ciphertext in src
// using the given private key. Decryption failures (wrong key,
// truncated or corrupted ciphertext) surface either here or as read
// errors from the returned Reader, depending on where in the stream
// the damage sits.
//
// The private key is borrowed (read via .String() to parse the age
// identity) and is NOT closed by this function.
func Decrypt(src io.Reader, privateKey *secret.Buffer) (io.Reader, error) {
	// Convert the buffer to a string at the API boundary;
	// age.ParseX25519Identity requires a string. The heap copy is
	// brief and call-scoped.
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	reader, err := age.Decrypt(src, identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return reader, nil
}

// ParsePublicKey validates an age public key string. Returns an error
// if the key is not a valid age x25519 public key. Use this to reject
// a bad --to recipient before any bundle bytes are written.
func ParsePublicKey(publicKey string) error {
	_, err := age.ParseX25519Recipient(publicKey)
	if err != nil {
		return fmt.Errorf("invalid age public key: %w", err)
	}
	return nil
}

// ParsePrivateKey validates an age private key stored in a
// secret.Buffer. Returns an error if the key is not a valid age
// x25519 private key.
func ParsePrivateKey(privateKey *secret.Buffer) error {
	_, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return fmt.Errorf("invalid age private key: %w", err)
	}
	return nil
}
