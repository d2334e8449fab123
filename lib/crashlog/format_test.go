// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashlog

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/lib/secret"
)

// testEnvelope builds a fixed envelope so encoded output is stable
// across test cases.
func testEnvelope() *Envelope {
	return &Envelope{
		Schema:     EnvelopeSchema,
		CapturedAt: time.Date(2026, 5, 17, 8, 30, 0, 123456789, time.UTC),
		Hostname:   "edge-04",
		Executable: "/usr/bin/telemetry-agent",
		PID:        4121,
		Runtime:    "go1.25.6",
		OS:         "linux",
		Arch:       "amd64",
		Kind:       fault.KindIndex,
		Message:    "index out of bounds: the len is 3 but the index is 4",
		File:       "src/main.rs",
		Line:       4,
		Column:     5,
		Labels:     map[string]string{"region": "eu-1"},
	}
}

// testKey returns a fresh 32-byte sealing key buffer.
func testKey(t *testing.T, fill byte) *secret.Buffer {
	t.Helper()
	raw := bytes.Repeat([]byte{fill}, KeySize)
	key, err := secret.NewFromBytes(raw)
	if err != nil {
		t.Fatalf("building test key: %v", err)
	}
	t.Cleanup(func() { key.Close() })
	return key
}

func TestEncodeDecodePlain(t *testing.T) {
	original := testEnvelope()

	data, err := Encode(original, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	header, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if header.Version != formatVersion {
		t.Errorf("Version: got %d, want %d", header.Version, formatVersion)
	}
	if header.Compression != CompressionNone || header.Sealed() {
		t.Errorf("header: got compression=%v sealed=%v, want none/unsealed",
			header.Compression, header.Sealed())
	}

	decoded, err := Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Kind != original.Kind || decoded.Message != original.Message {
		t.Errorf("fault roundtrip: got %v %q", decoded.Kind, decoded.Message)
	}
	if decoded.File != original.File || decoded.Line != original.Line || decoded.Column != original.Column {
		t.Errorf("location roundtrip: got %s:%d:%d", decoded.File, decoded.Line, decoded.Column)
	}
	if !decoded.CapturedAt.Equal(original.CapturedAt) {
		t.Errorf("CapturedAt: got %v, want %v", decoded.CapturedAt, original.CapturedAt)
	}
	if decoded.Labels["region"] != "eu-1" {
		t.Errorf("labels lost: %v", decoded.Labels)
	}

	want := "panicked at 'index out of bounds: the len is 3 but the index is 4', src/main.rs:4:5"
	if got := decoded.Diagnostic(); got != want {
		t.Errorf("Diagnostic:\n got %q\nwant %q", got, want)
	}
}

func TestEncodeCompressesFlight(t *testing.T) {
	original := testEnvelope()
	original.Flight = []byte(strings.Repeat("level=info msg=\"heartbeat ok\"\n", 200))

	data, err := Encode(original, Options{Compression: CompressionZstd})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	header, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if header.Compression != CompressionZstd {
		t.Fatalf("Compression: got %v, want zstd", header.Compression)
	}
	if int(header.PayloadSize) >= int(header.EnvelopeSize) {
		t.Errorf("payload %d not smaller than envelope %d", header.PayloadSize, header.EnvelopeSize)
	}

	decoded, err := Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded.Flight, original.Flight) {
		t.Errorf("flight roundtrip lost data: got %d bytes, want %d", len(decoded.Flight), len(original.Flight))
	}
}

func TestIncompressibleFallsBackToNone(t *testing.T) {
	random := make([]byte, 4096)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("rand: %v", err)
	}

	for _, tag := range []CompressionTag{CompressionLZ4, CompressionZstd} {
		stored, actual, err := compressWithFallback(random, tag)
		if err != nil {
			t.Fatalf("compressWithFallback(%v): %v", tag, err)
		}
		if actual != CompressionNone {
			t.Errorf("tag %v: random payload stored as %v, want fallback to none", tag, actual)
		}
		if !bytes.Equal(stored, random) {
			t.Errorf("tag %v: fallback altered the payload", tag)
		}
	}
}

func TestSealRoundtrip(t *testing.T) {
	key := testKey(t, 0xA7)
	original := testEnvelope()

	data, err := Encode(original, Options{Compression: CompressionLZ4, Key: key})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	header, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if !header.Sealed() {
		t.Fatal("header does not report the file as sealed")
	}

	decoded, err := Decode(data, key)
	if err != nil {
		t.Fatalf("Decode with key: %v", err)
	}
	if decoded.Message != original.Message {
		t.Errorf("Message: got %q", decoded.Message)
	}

	if _, err := Decode(data, nil); err == nil {
		t.Error("Decode without key succeeded on a sealed file")
	}

	wrong := testKey(t, 0x3C)
	if _, err := Decode(data, wrong); err == nil {
		t.Error("Decode with the wrong key succeeded")
	}
}

func TestSealedPayloadHidesMessage(t *testing.T) {
	key := testKey(t, 0x51)
	original := testEnvelope()
	original.Message = "customer 8841 hit the bad path"

	data, err := Encode(original, Options{Key: key})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if bytes.Contains(data, []byte("customer 8841")) {
		t.Error("sealed file contains the plaintext message")
	}
}

func TestCorruptionDetected(t *testing.T) {
	data, err := Encode(testEnvelope(), Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	flipped := append([]byte(nil), data...)
	flipped[headerSize+3] ^= 0x01
	if _, err := Decode(flipped, nil); err == nil {
		t.Error("Decode accepted a corrupted payload")
	}

	flipped = append([]byte(nil), data...)
	flipped[digestOffset] ^= 0x01
	if _, err := Decode(flipped, nil); err == nil {
		t.Error("Decode accepted a corrupted digest")
	}

	if _, err := ParseHeader(data[:len(data)-1]); err == nil {
		t.Error("ParseHeader accepted a truncated file")
	}
}

func TestSealBindsTagBytes(t *testing.T) {
	key := testKey(t, 0x62)
	data, err := Encode(testEnvelope(), Options{Compression: CompressionLZ4, Key: key})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Flip the compression tag and recompute the (public-key) digest
	// so only the AEAD is left to notice. The sealed payload must
	// refuse to open under the altered header.
	tampered := append([]byte(nil), data...)
	tampered[8] = byte(CompressionZstd)
	copy(tampered[digestOffset:headerSize], digest(tampered[:digestOffset], tampered[headerSize:]))

	if _, err := Decode(tampered, key); err == nil {
		t.Error("Decode accepted a sealed file with a rewritten compression tag")
	}
}

func TestParseHeaderRejectsForeignFiles(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("FAULTLN")},
		{"wrong magic", append([]byte("NOTACRSH"), make([]byte, headerSize)...)},
	}
	for _, c := range cases {
		if _, err := ParseHeader(c.data); err == nil {
			t.Errorf("%s: ParseHeader accepted invalid input", c.name)
		}
	}

	// Future format version.
	good, err := Encode(testEnvelope(), Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	future := append([]byte(nil), good...)
	future[7] = formatVersion + 1
	if _, err := ParseHeader(future); err == nil {
		t.Error("ParseHeader accepted a future format version")
	}

	// Unknown compression tag.
	unknown := append([]byte(nil), good...)
	unknown[8] = 0x7F
	if _, err := ParseHeader(unknown); err == nil {
		t.Error("ParseHeader accepted an unknown compression tag")
	}

	// Non-zero reserved bytes.
	reserved := append([]byte(nil), good...)
	reserved[10] = 0xFF
	if _, err := ParseHeader(reserved); err == nil {
		t.Error("ParseHeader accepted non-zero reserved bytes")
	}
}

func TestCompressionTagNames(t *testing.T) {
	cases := []struct {
		tag  CompressionTag
		want string
	}{
		{CompressionNone, "none"},
		{CompressionLZ4, "lz4"},
		{CompressionZstd, "zstd"},
	}
	for _, c := range cases {
		if got := c.tag.String(); got != c.want {
			t.Errorf("%d.String(): got %q, want %q", c.tag, got, c.want)
		}
		parsed, err := ParseCompressionTag(c.want)
		if err != nil || parsed != c.tag {
			t.Errorf("ParseCompressionTag(%q): got %v, %v", c.want, parsed, err)
		}
	}
	if _, err := ParseCompressionTag("brotli"); err == nil {
		t.Error("ParseCompressionTag accepted an unknown name")
	}
}

func TestDecodeRejectsFutureSchema(t *testing.T) {
	envelope := testEnvelope()
	envelope.Schema = EnvelopeSchema + 1

	data, err := Encode(envelope, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(data, nil); err == nil {
		t.Error("Decode accepted a future envelope schema")
	}
}
