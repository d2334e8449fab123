// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/faultline-project/faultline/fault"
)

// lockedItem builds a sealed record whose envelope could not be
// decrypted, as Load produces when no key file is given.
func lockedItem() Item {
	item := testItem(7, fault.KindPanic, "unused")
	item.Envelope = nil
	item.Entry.Sealed = true
	return item
}

// undecodedItem builds a plaintext record whose envelope failed to
// decode.
func undecodedItem() Item {
	item := testItem(8, fault.KindPanic, "unused")
	item.Envelope = nil
	return item
}

func TestDetailHeaderLineCount(t *testing.T) {
	renderer := NewDetailRenderer(DefaultTheme(), 80)
	for name, item := range map[string]Item{
		"decoded":   testItem(1, fault.KindIndex, "index out of bounds: the len is 3 but the index is 4"),
		"locked":    lockedItem(),
		"undecoded": undecodedItem(),
	} {
		header := renderer.RenderHeader(item)
		if got := len(strings.Split(header, "\n")); got != detailHeaderLines {
			t.Errorf("%s: header has %d lines, want %d", name, got, detailHeaderLines)
		}
	}
}

func TestDetailHeaderContent(t *testing.T) {
	item := testItem(5, fault.KindPanic, "shutdown watchdog expired")
	renderer := NewDetailRenderer(DefaultTheme(), 120)
	header := ansi.Strip(renderer.RenderHeader(item))

	for _, want := range []string{
		"PANIC",
		item.Entry.Name,
		"captured 2026-07-20 16:00:05 UTC",
		"host worker-3",
		"pid 4205",
		"go1.25.6",
		"panicked at 'shutdown watchdog expired', pipeline.go:45",
		"/usr/bin/ingestd",
	} {
		if !strings.Contains(header, want) {
			t.Errorf("header missing %q:\n%s", want, header)
		}
	}
}

func TestDetailHeaderLocked(t *testing.T) {
	renderer := NewDetailRenderer(DefaultTheme(), 80)
	header := ansi.Strip(renderer.RenderHeader(lockedItem()))

	if !strings.Contains(header, "SEALED") {
		t.Error("locked record should show the SEALED badge")
	}
	if !strings.Contains(header, "decryption key required") {
		t.Error("locked record should explain the missing key")
	}
}

func TestDetailHeaderUndecoded(t *testing.T) {
	renderer := NewDetailRenderer(DefaultTheme(), 80)
	header := ansi.Strip(renderer.RenderHeader(undecodedItem()))

	if !strings.Contains(header, "UNREADABLE") {
		t.Error("undecoded record should show the UNREADABLE badge")
	}
	if !strings.Contains(header, "record could not be decoded") {
		t.Error("undecoded record should explain the decode failure")
	}
}

func TestDetailHeaderSealedDecoded(t *testing.T) {
	item := testItem(2, fault.KindDivide, "attempt to divide by zero")
	item.Entry.Sealed = true

	renderer := NewDetailRenderer(DefaultTheme(), 120)
	header := ansi.Strip(renderer.RenderHeader(item))

	if !strings.Contains(header, "DIVIDE") {
		t.Error("decrypted record should show its kind, not SEALED")
	}
	if !strings.Contains(header, "(sealed)") {
		t.Error("decrypted sealed record should keep the (sealed) marker")
	}
}

func TestDetailHeaderTruncatesToWidth(t *testing.T) {
	item := testItem(1, fault.KindPanic, strings.Repeat("long message ", 20))
	renderer := NewDetailRenderer(DefaultTheme(), 30)

	for _, line := range strings.Split(renderer.RenderHeader(item), "\n") {
		if width := ansi.StringWidth(line); width > 30 {
			t.Errorf("header line width %d exceeds 30: %q", width, ansi.Strip(line))
		}
	}
}

func TestDetailBodyLocation(t *testing.T) {
	renderer := NewDetailRenderer(DefaultTheme(), 80)

	item := testItem(5, fault.KindPanic, "shutdown watchdog expired")
	body := ansi.Strip(renderer.RenderBody(item))
	if !strings.Contains(body, "Location") || !strings.Contains(body, "pipeline.go:45") {
		t.Errorf("body missing location:\n%s", body)
	}

	item.Envelope.Column = 7
	body = ansi.Strip(renderer.RenderBody(item))
	if !strings.Contains(body, "pipeline.go:45:7") {
		t.Errorf("body should include the column when present:\n%s", body)
	}

	item.Envelope.File = ""
	body = ansi.Strip(renderer.RenderBody(item))
	if !strings.Contains(body, "withheld (stripped binary)") {
		t.Errorf("body should note a withheld location:\n%s", body)
	}
}

func TestDetailBodyPlatform(t *testing.T) {
	renderer := NewDetailRenderer(DefaultTheme(), 80)
	body := ansi.Strip(renderer.RenderBody(testItem(1, fault.KindSlice, "slice bounds out of range")))

	if !strings.Contains(body, "linux/amd64") {
		t.Error("body should show the platform")
	}
	if !strings.Contains(body, "ingestd") {
		t.Error("body should show the executable base name")
	}
}

func TestDetailBodyLabels(t *testing.T) {
	item := testItem(1, fault.KindPanic, "x")
	item.Envelope.Labels = map[string]string{
		"service": "ingestd",
		"region":  "eu-west-1",
	}

	renderer := NewDetailRenderer(DefaultTheme(), 80)
	body := ansi.Strip(renderer.RenderBody(item))

	if !strings.Contains(body, "Labels") {
		t.Fatal("body should have a Labels section")
	}
	if !strings.Contains(body, "region=eu-west-1") || !strings.Contains(body, "service=ingestd") {
		t.Errorf("body missing labels:\n%s", body)
	}
	// Sorted output: region before service.
	if strings.Index(body, "region=") > strings.Index(body, "service=") {
		t.Error("labels should render in sorted key order")
	}
}

func TestDetailBodyFlightTail(t *testing.T) {
	item := testItem(1, fault.KindPanic, "x")
	var flight strings.Builder
	for line := 1; line <= 50; line++ {
		fmt.Fprintf(&flight, "line %d\n", line)
	}
	item.Envelope.Flight = []byte(flight.String())

	renderer := NewDetailRenderer(DefaultTheme(), 80)
	body := ansi.Strip(renderer.RenderBody(item))

	if !strings.Contains(body, "Flight Recorder") {
		t.Fatal("body should have a flight recorder section")
	}
	if !strings.Contains(body, ", tail") {
		t.Error("truncated flight should be marked as a tail")
	}
	if !strings.Contains(body, "line 50") || !strings.Contains(body, "line 11\n") {
		t.Error("tail should keep the newest lines")
	}
	if strings.Contains(body, "line 10\n") {
		t.Error("tail should drop lines beyond the window")
	}
}

func TestDetailBodyFlightStripsEscapes(t *testing.T) {
	item := testItem(1, fault.KindPanic, "x")
	item.Envelope.Flight = []byte("\x1b[31mred alert\x1b[0m\nplain line\n")

	renderer := NewDetailRenderer(DefaultTheme(), 80)
	body := renderer.RenderBody(item)

	if !strings.Contains(ansi.Strip(body), "red alert") {
		t.Error("flight text should survive escape stripping")
	}
	if strings.Contains(body, "\x1b[31m") {
		t.Error("recorded escape sequences must not leak into the pane")
	}
}

func TestDetailBodyNotes(t *testing.T) {
	item := testItem(1, fault.KindPanic, "x")
	item.Note = "## Follow-up\n\nRolled back the deploy."

	renderer := NewDetailRenderer(DefaultTheme(), 80)
	body := ansi.Strip(renderer.RenderBody(item))

	if !strings.Contains(body, "Notes") {
		t.Fatal("body should have a Notes section")
	}
	if !strings.Contains(body, "Follow-up") || !strings.Contains(body, "Rolled back the deploy.") {
		t.Errorf("notes content missing:\n%s", body)
	}
}

func TestDetailBodyLockedHint(t *testing.T) {
	renderer := NewDetailRenderer(DefaultTheme(), 80)
	body := ansi.Strip(renderer.RenderBody(lockedItem()))

	if !strings.Contains(body, "--key") {
		t.Errorf("locked body should point at --key:\n%s", body)
	}
}

func TestFormatByteCount(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{2560, "2.5 KB"},
	}
	for _, test := range tests {
		if got := formatByteCount(test.count); got != test.want {
			t.Errorf("formatByteCount(%d) = %q, want %q", test.count, got, test.want)
		}
	}
}

func TestDetailPaneView(t *testing.T) {
	pane := NewDetailPane(DefaultTheme())
	pane.SetSize(60, 20)

	view := ansi.Strip(pane.View(false))
	if !strings.Contains(view, "Select a crash record to view details") {
		t.Errorf("empty pane should show the placeholder:\n%s", view)
	}

	pane.SetItem(testItem(5, fault.KindPanic, "shutdown watchdog expired"))
	view = ansi.Strip(pane.View(true))
	if !strings.Contains(view, "PANIC") {
		t.Errorf("pane should show the record header:\n%s", view)
	}
	if !strings.Contains(view, "Location") {
		t.Errorf("pane should show the record body:\n%s", view)
	}

	pane.Clear()
	view = ansi.Strip(pane.View(false))
	if !strings.Contains(view, "Select a crash record to view details") {
		t.Error("cleared pane should show the placeholder again")
	}
}

func TestDetailPaneScroll(t *testing.T) {
	pane := NewDetailPane(DefaultTheme())
	pane.SetSize(60, 12)

	item := testItem(1, fault.KindPanic, "x")
	var note strings.Builder
	for line := 0; line < 60; line++ {
		fmt.Fprintf(&note, "note line %d\n\n", line)
	}
	item.Note = note.String()
	pane.SetItem(item)

	if pane.viewport.YOffset != 0 {
		t.Fatal("SetItem should scroll to the top")
	}
	pane.ScrollDown()
	if pane.viewport.YOffset == 0 {
		t.Error("ScrollDown should advance the viewport")
	}
	pane.ScrollUp()
	if pane.viewport.YOffset != 0 {
		t.Error("ScrollUp should return to the top")
	}

	pane.ScrollDown()
	pane.SetItem(item)
	if pane.viewport.YOffset != 0 {
		t.Error("setting a record should reset the scroll position")
	}
}
