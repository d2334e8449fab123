// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package abort

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/fault/handler/internal/stop"
)

func TestHandleWritesThenAborts(t *testing.T) {
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

	handle(fault.NewRecord(fault.KindDivide, "attempt to divide by zero", "calc.go", 12, 9))
	w.Close()

	if !aborted {
		t.Fatal("handler returned without aborting")
	}

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "panicked at 'attempt to divide by zero', calc.go:12:9\n"
	if string(out) != want {
		t.Errorf("stderr: got %q, want %q", out, want)
	}
	if !strings.HasSuffix(string(out), "\n") {
		t.Error("diagnostic line is not newline terminated")
	}
}
