// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package persist

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/fault/handler/internal/stop"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/flightrec"
	"github.com/faultline-project/faultline/lib/scrub"
	"github.com/faultline-project/faultline/lib/secret"
)

// configure installs cfg and restores the previous configuration when
// the test ends. Tests in this package share the handler's package
// state and must not run in parallel.
func configure(t *testing.T, cfg Config) {
	t.Helper()
	previous := current.Load()
	Configure(cfg)
	t.Cleanup(func() { current.Store(previous) })
}

func testRecord() *fault.Record {
	return fault.NewRecord(fault.KindIndex,
		"index out of bounds: the len is 3 but the index is 4",
		"src/main.rs", 4, 5)
}

func TestHandlePersistsRecord(t *testing.T) {
	dir := t.TempDir()

	flight := flightrec.New(1024)
	flight.Write([]byte("step 1 ok\nAPI_KEY=supersecret99\nstep 2 ok\n"))

	configure(t, Config{
		Dir:         dir,
		Flight:      flight,
		Scrub:       scrub.Default(),
		Compression: crashlog.CompressionLZ4,
		Labels:      map[string]string{"role": "ingest"},
	})

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	restoreFD := stop.SwapStderr(int(w.Fd()))
	defer restoreFD()

	aborted := false
	restoreAbort := stop.SwapAbort(func() { aborted = true })
	defer restoreAbort()

	handle(testRecord())
	w.Close()

	if !aborted {
		t.Fatal("handler returned without aborting")
	}

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	wantDiag := "panicked at 'index out of bounds: the len is 3 but the index is 4', src/main.rs:4:5\n"
	if !strings.HasPrefix(string(out), wantDiag) {
		t.Errorf("stderr does not start with the diagnostic line:\n%q", out)
	}
	if !strings.Contains(string(out), "crash record written to "+dir) {
		t.Errorf("stderr does not report the record path:\n%q", out)
	}

	store, err := crashlog.OpenStore(dir)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List: got %d entries, want 1", len(entries))
	}
	if entries[0].Compression != "lz4" {
		t.Errorf("compression: got %q, want %q", entries[0].Compression, "lz4")
	}

	envelope, err := store.Read(entries[0].Name, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if envelope.Kind != fault.KindIndex {
		t.Errorf("kind: got %v, want %v", envelope.Kind, fault.KindIndex)
	}
	if envelope.Labels["role"] != "ingest" {
		t.Errorf("labels: got %v, want role=ingest", envelope.Labels)
	}
	if bytes.Contains(envelope.Flight, []byte("supersecret99")) {
		t.Errorf("flight snapshot leaked the secret: %q", envelope.Flight)
	}
	if !bytes.Contains(envelope.Flight, []byte("API_KEY=[scrubbed]")) {
		t.Errorf("flight snapshot not scrubbed: %q", envelope.Flight)
	}
	if !bytes.Contains(envelope.Flight, []byte("step 2 ok")) {
		t.Errorf("flight snapshot lost ordinary content: %q", envelope.Flight)
	}
}

func TestHandleUnconfiguredUsesDefaultDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FAULTLINE_DIR", dir)

	previous := current.Load()
	current.Store(nil)
	t.Cleanup(func() { current.Store(previous) })

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	restoreFD := stop.SwapStderr(int(w.Fd()))
	defer restoreFD()
	restoreAbort := stop.SwapAbort(func() {})
	defer restoreAbort()

	handle(testRecord())
	w.Close()
	io.ReadAll(r)

	store, err := crashlog.OpenStore(dir)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List in $FAULTLINE_DIR: got %d entries, want 1", len(entries))
	}
}

func TestHandleSealsWithKey(t *testing.T) {
	dir := t.TempDir()

	key, err := secret.NewFromBytes(bytes.Repeat([]byte{0x42}, crashlog.KeySize))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	t.Cleanup(func() { key.Close() })

	configure(t, Config{Dir: dir, Key: key})

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	restoreFD := stop.SwapStderr(int(w.Fd()))
	defer restoreFD()
	restoreAbort := stop.SwapAbort(func() {})
	defer restoreAbort()

	handle(testRecord())
	w.Close()
	io.ReadAll(r)

	store, err := crashlog.OpenStore(dir)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List: got %d entries, want 1", len(entries))
	}
	if !entries[0].Sealed {
		t.Fatal("record is not sealed")
	}

	if _, err := store.Read(entries[0].Name, nil); err == nil {
		t.Error("Read without key succeeded on a sealed record")
	}
	envelope, err := store.Read(entries[0].Name, key)
	if err != nil {
		t.Fatalf("Read with key: %v", err)
	}
	if envelope.Message != "index out of bounds: the len is 3 but the index is 4" {
		t.Errorf("message: got %q", envelope.Message)
	}
}

func TestHandleReportsWriteFailure(t *testing.T) {
	// A regular file where the store directory should be makes
	// OpenStore fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	configure(t, Config{Dir: filepath.Join(blocker, "store")})

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	restoreFD := stop.SwapStderr(int(w.Fd()))
	defer restoreFD()

	aborted := false
	restoreAbort := stop.SwapAbort(func() { aborted = true })
	defer restoreAbort()

	handle(testRecord())
	w.Close()

	if !aborted {
		t.Fatal("handler did not abort after the write failure")
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(out), "persist failed") {
		t.Errorf("stderr does not report the failure:\n%q", out)
	}
}

func TestHandleActionExit(t *testing.T) {
	configure(t, Config{Dir: t.TempDir(), Action: ActionExit})

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	restoreFD := stop.SwapStderr(int(w.Fd()))
	defer restoreFD()

	code := -1
	restoreExit := stop.SwapExit(func(c int) { code = c })
	defer restoreExit()
	restoreAbort := stop.SwapAbort(func() { t.Error("abort called for ActionExit") })
	defer restoreAbort()

	handle(testRecord())
	w.Close()
	io.ReadAll(r)

	if code != 2 {
		t.Errorf("exit code: got %d, want 2", code)
	}
}

func TestHandleActionPark(t *testing.T) {
	configure(t, Config{Dir: t.TempDir(), Action: ActionPark})

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	restoreFD := stop.SwapStderr(int(w.Fd()))
	defer restoreFD()

	parked := false
	restorePark := stop.SwapPark(func() { parked = true })
	defer restorePark()
	restoreAbort := stop.SwapAbort(func() { t.Error("abort called for ActionPark") })
	defer restoreAbort()

	handle(testRecord())
	w.Close()
	io.ReadAll(r)

	if !parked {
		t.Error("handler did not park")
	}
}

func TestConfigureCopiesLabels(t *testing.T) {
	labels := map[string]string{"deploy": "blue"}
	configure(t, Config{Labels: labels})

	labels["deploy"] = "green"

	cfg := current.Load()
	if cfg.Labels["deploy"] != "blue" {
		t.Errorf("labels: got %q, want %q (caller mutation leaked in)",
			cfg.Labels["deploy"], "blue")
	}
}

func TestDefaultDirHonorsEnv(t *testing.T) {
	t.Setenv("FAULTLINE_DIR", "/srv/crash")
	if got := DefaultDir(); got != "/srv/crash" {
		t.Errorf("DefaultDir: got %q, want %q", got, "/srv/crash")
	}

	t.Setenv("FAULTLINE_DIR", "")
	if got := DefaultDir(); got == "" || !filepath.IsAbs(got) {
		t.Errorf("DefaultDir fallback: got %q, want an absolute path", got)
	}
}
