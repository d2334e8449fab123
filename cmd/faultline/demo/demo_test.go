// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package demo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeScript stands in for the faultline-demo binary so the
// subprocess plumbing can be exercised without building one.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-demo")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("writing fake demo: %v", err)
	}
	return path
}

func TestRunDemoCrashPath(t *testing.T) {
	script := writeScript(t, `echo "polling 3 sensors"
printf "panicked at 'index out of bounds: the len is 3 but the index is 4', main.go:31\n" >&2
exec sleep 60
`)
	params := &demoParams{Bin: script, Slot: 4, Timeout: 10 * time.Second}
	var out bytes.Buffer
	if err := runDemo(context.Background(), &out, testLogger(), params); err != nil {
		t.Fatalf("runDemo: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "polling 3 sensors") {
		t.Errorf("output missing narration:\n%s", text)
	}
	if !strings.Contains(text, "panicked at 'index out of bounds: the len is 3 but the index is 4', main.go:31") {
		t.Errorf("output missing diagnostic:\n%s", text)
	}
	if !strings.Contains(text, "parked the program") {
		t.Errorf("output missing the terminal-action note:\n%s", text)
	}
}

func TestRunDemoCompletesInBounds(t *testing.T) {
	script := writeScript(t, `echo "polling 3 sensors"
echo "sensor 1 reads 47"
exit 0
`)
	params := &demoParams{Bin: script, Slot: 1, Timeout: 10 * time.Second}
	var out bytes.Buffer
	if err := runDemo(context.Background(), &out, testLogger(), params); err != nil {
		t.Fatalf("runDemo: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "sensor 1 reads 47") {
		t.Errorf("output missing narration:\n%s", text)
	}
	if !strings.Contains(text, "Slot 1 is inside the array") {
		t.Errorf("output missing the completed note:\n%s", text)
	}
}

func TestRunDemoSilentTimesOut(t *testing.T) {
	script := writeScript(t, "exec sleep 60\n")
	params := &demoParams{Bin: script, Slot: 4, Timeout: 200 * time.Millisecond}
	var out bytes.Buffer
	err := runDemo(context.Background(), &out, testLogger(), params)
	if err == nil {
		t.Fatal("runDemo succeeded; want a timeout error")
	}
	var command *cli.CommandError
	if !errors.As(err, &command) {
		t.Fatalf("error = %v, want a CommandError", err)
	}
	if code := command.ExitCode(); code != 5 {
		t.Errorf("exit code = %d, want 5 (transient)", code)
	}
	if !strings.Contains(err.Error(), "no diagnostic") {
		t.Errorf("error = %q, want mention of the missing diagnostic", err)
	}
}

func TestRunDemoChildFails(t *testing.T) {
	script := writeScript(t, `echo "polling 3 sensors"
exit 3
`)
	params := &demoParams{Bin: script, Slot: 4, Timeout: 10 * time.Second}
	var out bytes.Buffer
	err := runDemo(context.Background(), &out, testLogger(), params)
	if err == nil {
		t.Fatal("runDemo succeeded; want a failure for exit status 3")
	}
	if !strings.Contains(err.Error(), "demo program failed") {
		t.Errorf("error = %q, want the child failure wrapped", err)
	}
	if !strings.Contains(out.String(), "polling 3 sensors") {
		t.Errorf("narration should still be shown on failure, got:\n%s", out.String())
	}
}

func TestRunDemoMissingBinary(t *testing.T) {
	params := &demoParams{Bin: filepath.Join(t.TempDir(), "absent"), Slot: 4, Timeout: time.Second}
	var out bytes.Buffer
	err := runDemo(context.Background(), &out, testLogger(), params)
	if err == nil {
		t.Fatal("runDemo succeeded; want a start failure")
	}
	if !strings.Contains(err.Error(), "starting") {
		t.Errorf("error = %q, want a start failure", err)
	}
}

func TestLocateDemoBinaryMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := locateDemoBinary()
	if err == nil {
		t.Fatal("locateDemoBinary found a binary; want not-found")
	}
	var command *cli.CommandError
	if !errors.As(err, &command) {
		t.Fatalf("error = %v, want a CommandError", err)
	}
	if code := command.ExitCode(); code != 3 {
		t.Errorf("exit code = %d, want 3 (not found)", code)
	}
}
