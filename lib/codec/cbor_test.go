// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/faultline-project/faultline/fault"
)

// sampleState is a representative internal record using cbor struct
// tags (the convention for purely-internal types).
type sampleState struct {
	Executable string `cbor:"executable"`
	Reason     string `cbor:"reason,omitempty"`
	Restarts   int    `cbor:"restarts"`
}

// sampleSummary uses json struct tags (the convention for types that
// serve both JSON and CBOR, relying on fxamacker's fallback).
type sampleSummary struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleState{
		Executable: "/usr/bin/collector",
		Reason:     "fault",
		Restarts:   42,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleState
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	state := sampleState{
		Executable: "/usr/bin/collector",
		Reason:     "fault",
		Restarts:   7,
	}

	first, err := Marshal(state)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}

	second, err := Marshal(state)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestEncoderDecoderStreamRoundtrip(t *testing.T) {
	states := []sampleState{
		{Executable: "/bin/a", Reason: "fault", Restarts: 1},
		{Executable: "/bin/b", Reason: "signal", Restarts: 2},
		{Executable: "/bin/c", Restarts: 0},
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, state := range states {
		if err := encoder.Encode(state); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i, want := range states {
		var got sampleState
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode state %d: %v", i, err)
		}
		if got != want {
			t.Errorf("state %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestJSONTagFallback(t *testing.T) {
	// Types with json tags (no cbor tags) should encode/decode
	// correctly through our modes, using json tag names as CBOR
	// map keys.
	original := sampleSummary{Version: 3, Name: "bundle"}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleSummary
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded != original {
		t.Errorf("json-tag roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestTimeKeepsSubsecondPrecision(t *testing.T) {
	type stamped struct {
		At time.Time `json:"at"`
	}

	want := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	data, err := Marshal(stamped{At: want})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded stamped
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.At.Equal(want) {
		t.Errorf("timestamp roundtrip: got %v, want %v", decoded.At, want)
	}
}

func TestKindEncodesAsTextString(t *testing.T) {
	type tagged struct {
		Kind fault.Kind `json:"kind"`
	}

	data, err := Marshal(tagged{Kind: fault.KindIndex})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"index"`) {
		t.Errorf("kind not encoded as text: %s", notation)
	}

	var decoded tagged
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Kind != fault.KindIndex {
		t.Errorf("kind roundtrip: got %v, want %v", decoded.Kind, fault.KindIndex)
	}
}

func TestOmitemptyRespected(t *testing.T) {
	// A zero-value omitempty field should not appear in output.
	withReason := sampleState{Executable: "/bin/a", Reason: "fault", Restarts: 1}
	withoutReason := sampleState{Executable: "/bin/a", Restarts: 1}

	dataWith, err := Marshal(withReason)
	if err != nil {
		t.Fatal(err)
	}
	dataWithout, err := Marshal(withoutReason)
	if err != nil {
		t.Fatal(err)
	}

	// The encoding without the reason field should be shorter because
	// the omitted field is not present.
	if len(dataWithout) >= len(dataWith) {
		t.Errorf("omitempty not effective: without=%d bytes, with=%d bytes",
			len(dataWithout), len(dataWith))
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var state sampleState
	err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &state)
	if err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestByteStringRoundtrip(t *testing.T) {
	// Verify that []byte fields encode as CBOR byte strings (major
	// type 2), not text strings. This matters for carrying flight
	// recorder contents and sealed payloads.
	type envelope struct {
		Payload []byte `cbor:"payload"`
	}

	original := envelope{Payload: []byte(`{"key":"value"}`)}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !bytes.Equal(decoded.Payload, original.Payload) {
		t.Errorf("byte string roundtrip: got %q, want %q", decoded.Payload, original.Payload)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"kind": "divide"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}

	if !strings.Contains(notation, `"kind"`) {
		t.Errorf("notation %q does not contain \"kind\"", notation)
	}
	if !strings.Contains(notation, `"divide"`) {
		t.Errorf("notation %q does not contain \"divide\"", notation)
	}
}

func TestDiagnoseFirst(t *testing.T) {
	item1, err := Marshal("hello")
	if err != nil {
		t.Fatalf("Marshal item 1: %v", err)
	}
	item2, err := Marshal(int64(42))
	if err != nil {
		t.Fatalf("Marshal item 2: %v", err)
	}

	var sequence []byte
	sequence = append(sequence, item1...)
	sequence = append(sequence, item2...)

	notation, remaining, err := DiagnoseFirst(sequence)
	if err != nil {
		t.Fatalf("DiagnoseFirst: %v", err)
	}

	if !strings.Contains(notation, `"hello"`) {
		t.Errorf("first item notation %q does not contain \"hello\"", notation)
	}
	if len(remaining) == 0 {
		t.Fatal("expected remaining bytes after first item")
	}

	notation2, remaining2, err := DiagnoseFirst(remaining)
	if err != nil {
		t.Fatalf("DiagnoseFirst second: %v", err)
	}
	if !strings.Contains(notation2, "42") {
		t.Errorf("second item notation %q does not contain \"42\"", notation2)
	}
	if len(remaining2) != 0 {
		t.Errorf("expected no remaining bytes, got %d", len(remaining2))
	}
}

func BenchmarkMarshal(b *testing.B) {
	state := sampleState{
		Executable: "/usr/bin/collector",
		Reason:     "fault",
		Restarts:   42,
	}

	b.ReportAllocs()
	for b.Loop() {
		Marshal(state)
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	state := sampleState{
		Executable: "/usr/bin/collector",
		Reason:     "fault",
		Restarts:   42,
	}
	data, err := Marshal(state)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		var decoded sampleState
		Unmarshal(data, &decoded)
	}
}
