// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashlog

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/faultline-project/faultline/lib/codec"
	"github.com/faultline-project/faultline/lib/secret"
)

var (
	// ErrDigest reports a crash file whose payload does not match the
	// digest in its header.
	ErrDigest = errors.New("crash file digest mismatch")

	// ErrEncrypted reports a sealed crash file opened without a key.
	// The header is still readable; see [ParseHeader].
	ErrEncrypted = errors.New("crash file is sealed and no key was provided")
)

// Crash file format constants.
const (
	// formatVersion is the crash file format version carried in the
	// last magic byte. Version 1 is the initial format.
	formatVersion = 1

	// headerSize is the fixed header: 8-byte magic + 2 tag bytes +
	// 2 reserved bytes + two 4-byte sizes + 4 reserved bytes + 32-byte
	// digest. The reserved bytes keep the uint32 fields 4-byte aligned
	// and the digest 8-byte aligned.
	headerSize = 56

	// digestOffset is where the digest starts within the header. The
	// digest covers header[:digestOffset] followed by the payload.
	digestOffset = 24
)

// fileMagic is the 8-byte crash file signature.
var fileMagic = [8]byte{'F', 'A', 'U', 'L', 'T', 'L', 'N', formatVersion}

// digestKey is the 32-byte key for BLAKE3 keyed hashing of crash
// files. A fixed constant; changing it invalidates every existing
// crash file digest. The byte values are the ASCII encoding of the
// domain name, zero-padded to 32 bytes, so the key is inspectable in
// hex dumps without sacrificing any property of BLAKE3 keyed mode.
var digestKey = [32]byte{
	'f', 'a', 'u', 'l', 't', 'l', 'i', 'n', 'e', '.', 'c', 'r', 'a', 's', 'h', 'l',
	'o', 'g', '.', 'v', '1', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Header is the parsed fixed header of a crash file. It can be read
// without the sealing key, so tooling can list sealed files it cannot
// open.
type Header struct {
	// Version is the format version from the magic.
	Version int

	// Compression is how the payload was compressed before any
	// sealing.
	Compression CompressionTag

	// Encryption is how the payload was sealed.
	Encryption EncryptionTag

	// PayloadSize is the stored payload size in bytes.
	PayloadSize uint32

	// EnvelopeSize is the CBOR envelope size before compression.
	EnvelopeSize uint32
}

// Sealed reports whether the payload is encrypted.
func (h Header) Sealed() bool {
	return h.Encryption != EncryptionNone
}

// Options control how an envelope is encoded into a crash file.
type Options struct {
	// Compression selects the payload compression. The encoder falls
	// back to CompressionNone when the payload does not shrink.
	Compression CompressionTag

	// Key seals the payload with XChaCha20-Poly1305 when non-nil. The
	// buffer is borrowed, never closed.
	Key *secret.Buffer
}

// Encode serializes an envelope into the crash file format.
func Encode(envelope *Envelope, options Options) ([]byte, error) {
	plain, err := codec.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encoding crash envelope: %w", err)
	}

	payload, compression, err := compressWithFallback(plain, options.Compression)
	if err != nil {
		return nil, fmt.Errorf("compressing crash envelope: %w", err)
	}

	encryption := EncryptionNone
	if options.Key != nil {
		encryption = EncryptionXChaCha20
		sealed, err := seal(payload, options.Key, sealAAD(compression, encryption))
		if err != nil {
			return nil, fmt.Errorf("sealing crash envelope: %w", err)
		}
		payload = sealed
	}

	out := make([]byte, headerSize, headerSize+len(payload))
	copy(out, fileMagic[:])
	out[8] = byte(compression)
	out[9] = byte(encryption)
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[16:20], uint32(len(plain)))
	copy(out[digestOffset:headerSize], digest(out[:digestOffset], payload))
	return append(out, payload...), nil
}

// Decode parses a crash file and returns its envelope. The key is
// required for sealed files and ignored for plain ones; it is
// borrowed, never closed.
func Decode(data []byte, key *secret.Buffer) (*Envelope, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	payload := data[headerSize:]
	want := digest(data[:digestOffset], payload)
	if string(want) != string(data[digestOffset:headerSize]) {
		return nil, fmt.Errorf("%w (file corrupt or truncated)", ErrDigest)
	}

	if header.Sealed() {
		if key == nil {
			return nil, ErrEncrypted
		}
		payload, err = open(payload, key, sealAAD(header.Compression, header.Encryption))
		if err != nil {
			return nil, fmt.Errorf("opening sealed crash file: %w", err)
		}
	}

	plain, err := decompress(payload, header.Compression, int(header.EnvelopeSize))
	if err != nil {
		return nil, fmt.Errorf("decompressing crash envelope: %w", err)
	}

	var envelope Envelope
	if err := codec.Unmarshal(plain, &envelope); err != nil {
		return nil, fmt.Errorf("decoding crash envelope: %w", err)
	}
	if envelope.Schema != EnvelopeSchema {
		return nil, fmt.Errorf("crash envelope schema %d is not supported (this code supports schema %d)",
			envelope.Schema, EnvelopeSchema)
	}
	return &envelope, nil
}

// ParseHeader reads and validates the fixed header without touching
// the payload beyond a length check.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("crash file is %d bytes, shorter than the %d-byte header", len(data), headerSize)
	}

	var magic [8]byte
	copy(magic[:], data[:8])
	if magic != fileMagic {
		if magic[0] == 'F' && magic[1] == 'A' && magic[2] == 'U' &&
			magic[3] == 'L' && magic[4] == 'T' && magic[5] == 'L' && magic[6] == 'N' {
			return Header{}, fmt.Errorf("crash file format version %d is not supported (this code supports version %d)",
				magic[7], formatVersion)
		}
		return Header{}, fmt.Errorf("not a crash file (invalid magic bytes)")
	}

	compression := CompressionTag(data[8])
	if compression > CompressionZstd {
		return Header{}, fmt.Errorf("crash file has unsupported compression tag %d", compression)
	}
	encryption := EncryptionTag(data[9])
	if encryption > EncryptionXChaCha20 {
		return Header{}, fmt.Errorf("crash file has unsupported encryption tag %d", encryption)
	}
	if data[10] != 0 || data[11] != 0 || string(data[20:24]) != "\x00\x00\x00\x00" {
		return Header{}, fmt.Errorf("crash file has non-zero reserved header bytes")
	}

	payloadSize := binary.LittleEndian.Uint32(data[12:16])
	if int(payloadSize) != len(data)-headerSize {
		return Header{}, fmt.Errorf("crash file payload is %d bytes, header says %d",
			len(data)-headerSize, payloadSize)
	}

	return Header{
		Version:      int(magic[7]),
		Compression:  compression,
		Encryption:   encryption,
		PayloadSize:  payloadSize,
		EnvelopeSize: binary.LittleEndian.Uint32(data[16:20]),
	}, nil
}

// digest computes the keyed BLAKE3 digest over the header prefix and
// payload.
func digest(prefix, payload []byte) []byte {
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("crashlog: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(prefix)
	hasher.Write(payload)
	return hasher.Sum(nil)
}

// sealAAD builds the additional authenticated data for sealing: the
// format version and both tag bytes. Binding the compression tag means
// a flipped tag fails authentication instead of feeding the wrong
// decompressor.
func sealAAD(compression CompressionTag, encryption EncryptionTag) []byte {
	return []byte{formatVersion, byte(compression), byte(encryption)}
}
