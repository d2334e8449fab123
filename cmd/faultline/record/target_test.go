// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/secret"
)

// testEnvelope builds an envelope with a controlled capture time so
// file names are deterministic and ordered by sequence.
func testEnvelope(sequence int) *crashlog.Envelope {
	record := fault.NewRecord(fault.KindIndex,
		"index out of bounds: the len is 3 but the index is 4", "scan.go", 142, 0)
	envelope := crashlog.NewEnvelope(record)
	envelope.CapturedAt = time.Date(2026, 6, 9, 11, 0, sequence, 0, time.UTC)
	envelope.PID = 9000 + sequence
	return envelope
}

// testStore writes three plain records and returns the store plus the
// file names, oldest first.
func testStore(t *testing.T) (*crashlog.Store, []string) {
	t.Helper()
	store, err := crashlog.OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	names := make([]string, 0, 3)
	for sequence := 1; sequence <= 3; sequence++ {
		name, err := store.Write(testEnvelope(sequence), crashlog.Options{})
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		names = append(names, name)
	}
	return store, names
}

func TestOpenTargetByName(t *testing.T) {
	store, names := testStore(t)
	access := cli.StoreAccess{Dir: store.Dir()}

	_, entry, err := openTarget(&access, names[1])
	if err != nil {
		t.Fatalf("openTarget(%q): %v", names[1], err)
	}
	if entry.Name != names[1] {
		t.Errorf("entry name: got %q, want %q", entry.Name, names[1])
	}

	// The .crash suffix is optional on the command line.
	bare := strings.TrimSuffix(names[1], crashlog.FileSuffix)
	_, entry, err = openTarget(&access, bare)
	if err != nil {
		t.Fatalf("openTarget(%q): %v", bare, err)
	}
	if entry.Name != names[1] {
		t.Errorf("suffixless lookup: got %q, want %q", entry.Name, names[1])
	}
}

func TestOpenTargetLatest(t *testing.T) {
	store, names := testStore(t)
	access := cli.StoreAccess{Dir: store.Dir()}

	_, entry, err := openTarget(&access, "latest")
	if err != nil {
		t.Fatalf("openTarget(latest): %v", err)
	}
	if want := names[len(names)-1]; entry.Name != want {
		t.Errorf("latest: got %q, want %q", entry.Name, want)
	}
}

func TestOpenTargetLatestEmptyStore(t *testing.T) {
	access := cli.StoreAccess{Dir: t.TempDir()}

	_, _, err := openTarget(&access, "latest")
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Category != cli.CategoryNotFound {
		t.Fatalf("openTarget(latest) on empty store: got %v, want not_found", err)
	}
}

func TestOpenTargetMissingName(t *testing.T) {
	store, _ := testStore(t)
	access := cli.StoreAccess{Dir: store.Dir()}

	_, _, err := openTarget(&access, "1700000000000000000-1")
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Category != cli.CategoryNotFound {
		t.Fatalf("missing record: got %v, want not_found", err)
	}
	if !strings.Contains(err.Error(), "faultline list") {
		t.Errorf("error %q does not point at 'faultline list'", err.Error())
	}
}

func TestOpenTargetPath(t *testing.T) {
	store, names := testStore(t)

	// The configured store points somewhere else entirely; the path
	// argument must win.
	access := cli.StoreAccess{Dir: t.TempDir()}
	path := filepath.Join(store.Dir(), names[0])

	inPlace, entry, err := openTarget(&access, path)
	if err != nil {
		t.Fatalf("openTarget(%q): %v", path, err)
	}
	if entry.Name != names[0] {
		t.Errorf("entry name: got %q, want %q", entry.Name, names[0])
	}
	if inPlace.Dir() != store.Dir() {
		t.Errorf("store dir: got %q, want %q", inPlace.Dir(), store.Dir())
	}
}

func TestOpenTargetPathNotACrashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not a crash file"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	access := cli.StoreAccess{Dir: t.TempDir()}

	_, _, err := openTarget(&access, path)
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Category != cli.CategoryValidation {
		t.Fatalf("non-crash file: got %v, want validation", err)
	}
}

func TestReadEnvelopeSealedWithoutKey(t *testing.T) {
	store, err := crashlog.OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	key, err := secret.NewFromBytes([]byte(strings.Repeat("\x42", crashlog.KeySize)))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	name, err := store.Write(testEnvelope(1), crashlog.Options{Key: key})
	key.Close()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	entry, err := store.Stat(name)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	access := cli.StoreAccess{Dir: store.Dir()}
	_, err = readEnvelope(&access, store, entry)
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Category != cli.CategoryValidation {
		t.Fatalf("sealed without key: got %v, want validation", err)
	}
	if !strings.Contains(err.Error(), "--key") {
		t.Errorf("error %q does not mention --key", err.Error())
	}
}

func TestReadEnvelopeSealedWithKey(t *testing.T) {
	store, err := crashlog.OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	key, err := secret.NewFromBytes([]byte(strings.Repeat("\x42", crashlog.KeySize)))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	name, err := store.Write(testEnvelope(1), crashlog.Options{Key: key})
	key.Close()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	entry, err := store.Stat(name)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	keyFile := filepath.Join(t.TempDir(), "seal.key")
	if err := os.WriteFile(keyFile, []byte(strings.Repeat("42", crashlog.KeySize)+"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	access := cli.StoreAccess{Dir: store.Dir(), KeyFile: keyFile}
	envelope, err := readEnvelope(&access, store, entry)
	if err != nil {
		t.Fatalf("readEnvelope: %v", err)
	}
	if envelope.Kind != fault.KindIndex {
		t.Errorf("kind: got %v, want %v", envelope.Kind, fault.KindIndex)
	}
	if !strings.Contains(envelope.Message, "the len is 3 but the index is 4") {
		t.Errorf("message %q lost in seal round trip", envelope.Message)
	}
}
