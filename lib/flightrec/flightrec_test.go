// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package flightrec

import (
	"bytes"
	"errors"
	"testing"
)

func TestBasicWriteRead(t *testing.T) {
	t.Parallel()
	rec := New(1024)

	rec.Write([]byte("hello"))
	rec.Write([]byte(" world"))

	got := rec.ReadFrom(0)
	if !bytes.Equal(got, []byte("hello world")) {
		t.Errorf("ReadFrom(0): got %q, want %q", got, "hello world")
	}
}

func TestReadFromOffset(t *testing.T) {
	t.Parallel()
	rec := New(1024)

	rec.Write([]byte("abcde"))
	rec.Write([]byte("fghij"))

	// Read from offset 5 should skip "abcde" and return "fghij".
	got := rec.ReadFrom(5)
	if !bytes.Equal(got, []byte("fghij")) {
		t.Errorf("ReadFrom(5): got %q, want %q", got, "fghij")
	}
}

func TestReadFromCurrentOffset(t *testing.T) {
	t.Parallel()
	rec := New(1024)

	rec.Write([]byte("data"))

	// Reading from the current offset should return nil (nothing new).
	offset := rec.CurrentOffset()
	got := rec.ReadFrom(offset)
	if got != nil {
		t.Errorf("ReadFrom(current): got %q, want nil", got)
	}
}

func TestReadFromFutureOffset(t *testing.T) {
	t.Parallel()
	rec := New(1024)

	rec.Write([]byte("data"))

	// Reading from beyond the current offset should return nil.
	got := rec.ReadFrom(rec.CurrentOffset() + 100)
	if got != nil {
		t.Errorf("ReadFrom(future): got %q, want nil", got)
	}
}

func TestWrapAround(t *testing.T) {
	t.Parallel()
	rec := New(10)

	// Write 15 bytes into a 10-byte ring. The first 5 bytes are lost.
	rec.Write([]byte("abcdefghijklmno"))

	got := rec.ReadFrom(0)
	if !bytes.Equal(got, []byte("fghijklmno")) {
		t.Errorf("ReadFrom(0) after wrap: got %q, want %q", got, "fghijklmno")
	}

	if rec.CurrentOffset() != 15 {
		t.Errorf("CurrentOffset: got %d, want 15", rec.CurrentOffset())
	}
}

func TestWrapAroundPartialRead(t *testing.T) {
	t.Parallel()
	rec := New(10)

	rec.Write([]byte("abcdefghijklmno")) // 15 bytes, ring holds "fghijklmno"

	// Read from offset 8 should return "ijklmno" (bytes 8-14).
	got := rec.ReadFrom(8)
	if !bytes.Equal(got, []byte("ijklmno")) {
		t.Errorf("ReadFrom(8): got %q, want %q", got, "ijklmno")
	}
}

func TestIncrementalWrites(t *testing.T) {
	t.Parallel()
	rec := New(10)

	// Write byte by byte to test wrapping with small writes.
	for i := 0; i < 25; i++ {
		rec.Write([]byte{byte('a' + i%26)})
	}

	// The ring should hold the last 10 bytes: "pqrstuvwxy"
	got := rec.ReadFrom(0)
	want := []byte("pqrstuvwxy")
	if !bytes.Equal(got, want) {
		t.Errorf("ReadFrom(0): got %q, want %q", got, want)
	}
}

func TestCurrentOffset(t *testing.T) {
	t.Parallel()
	rec := New(1024)

	if rec.CurrentOffset() != 0 {
		t.Errorf("initial offset: got %d, want 0", rec.CurrentOffset())
	}

	rec.Write([]byte("hello"))
	if rec.CurrentOffset() != 5 {
		t.Errorf("after write: got %d, want 5", rec.CurrentOffset())
	}

	rec.Write([]byte(" world"))
	if rec.CurrentOffset() != 11 {
		t.Errorf("after second write: got %d, want 11", rec.CurrentOffset())
	}
}

func TestSnapshotEmpty(t *testing.T) {
	t.Parallel()
	rec := New(1024)

	if got := rec.Snapshot(); got != nil {
		t.Errorf("Snapshot on empty recorder: got %q, want nil", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()
	rec := New(1024)

	rec.Write([]byte("before the fault"))

	first := rec.Snapshot()
	for i := range first {
		first[i] = 'X'
	}

	second := rec.Snapshot()
	if !bytes.Equal(second, []byte("before the fault")) {
		t.Errorf("Snapshot after mutating a previous result: got %q, want %q",
			second, "before the fault")
	}
}

func TestPreservesEscapeSequences(t *testing.T) {
	t.Parallel()
	rec := New(1024)

	// Flight data is raw terminal output; escape sequences must
	// survive byte-for-byte so the viewer can replay or strip them.
	escapeData := []byte("\x1b[31mred\x1b[0m \x1b[1;32mbold green\x1b[0m\n")
	rec.Write(escapeData)

	got := rec.Snapshot()
	if !bytes.Equal(got, escapeData) {
		t.Errorf("escape sequences not preserved: got %v, want %v", got, escapeData)
	}
}

func TestLargeWrite(t *testing.T) {
	t.Parallel()
	rec := New(100)

	// Write more than the ring capacity in a single call.
	data := make([]byte, 250)
	for i := range data {
		data[i] = byte(i % 256)
	}
	rec.Write(data)

	got := rec.Snapshot()
	if len(got) != 100 {
		t.Fatalf("Snapshot: got %d bytes, want 100", len(got))
	}
	// Should contain the last 100 bytes of the input.
	if !bytes.Equal(got, data[150:]) {
		t.Error("large write: ring does not contain the last 100 bytes")
	}
}

func TestWriteReportsFullCount(t *testing.T) {
	t.Parallel()
	rec := New(8)

	n, err := rec.Write([]byte("longer than the ring"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len("longer than the ring") {
		t.Errorf("Write count: got %d, want %d", n, len("longer than the ring"))
	}
}

func TestNewClampsCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -1} {
		rec := New(capacity)
		if rec.Capacity() != DefaultCapacity {
			t.Errorf("New(%d).Capacity(): got %d, want %d",
				capacity, rec.Capacity(), DefaultCapacity)
		}
		// The clamped recorder must actually work.
		rec.Write([]byte("ok"))
		if got := rec.Snapshot(); !bytes.Equal(got, []byte("ok")) {
			t.Errorf("New(%d) snapshot: got %q, want %q", capacity, got, "ok")
		}
	}
}

func TestTeeWriterRecordsAndForwards(t *testing.T) {
	t.Parallel()
	rec := New(1024)
	var sink bytes.Buffer

	tee := rec.TeeWriter(&sink)
	n, err := tee.Write([]byte("level=INFO msg=started\n"))
	if err != nil {
		t.Fatalf("tee Write: %v", err)
	}
	if n != len("level=INFO msg=started\n") {
		t.Errorf("tee Write count: got %d, want %d", n, len("level=INFO msg=started\n"))
	}

	if got := sink.String(); got != "level=INFO msg=started\n" {
		t.Errorf("forwarded output: got %q, want %q", got, "level=INFO msg=started\n")
	}
	if got := rec.Snapshot(); !bytes.Equal(got, []byte("level=INFO msg=started\n")) {
		t.Errorf("recorded flight: got %q, want %q", got, "level=INFO msg=started\n")
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestTeeWriterRecordsBeforeForwardFailure(t *testing.T) {
	t.Parallel()
	rec := New(1024)
	wantErr := errors.New("disk full")

	tee := rec.TeeWriter(failingWriter{err: wantErr})
	_, err := tee.Write([]byte("last words"))
	if !errors.Is(err, wantErr) {
		t.Fatalf("tee Write error: got %v, want %v", err, wantErr)
	}

	// The ring keeps the bytes even though the forward failed.
	if got := rec.Snapshot(); !bytes.Equal(got, []byte("last words")) {
		t.Errorf("recorded flight after forward failure: got %q, want %q",
			got, "last words")
	}
}
