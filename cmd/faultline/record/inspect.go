// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
	"github.com/faultline-project/faultline/lib/crashlog"
)

type inspectParams struct {
	cli.StoreAccess
	cli.JSONOutput
	cli.YAMLOutput
	Diag    bool `json:"-" flag:"diag" desc:"print only the one-line diagnostic"`
	Source  bool `json:"-" flag:"source" desc:"show the faulting source line when the file is readable"`
	Context int  `json:"-" flag:"context" desc:"lines of source context around the fault" default:"3"`
}

type inspectResult struct {
	Entry      crashlog.Entry     `json:"entry"`
	Envelope   *crashlog.Envelope `json:"envelope"`
	Diagnostic string             `json:"diagnostic"`
	Note       string             `json:"note,omitempty"`
}

// InspectCommand returns the "inspect" command.
func InspectCommand() *cli.Command {
	var params inspectParams
	return &cli.Command{
		Name:    "inspect",
		Summary: "Decode and display one crash record",
		Description: `Decode one crash record, verify its integrity, and display the
fault diagnostic together with the identity of the process that
wrote it.

The record argument is a name in the configured store, the word
"latest", or a path to a crash file. Sealed records need the store's
seal key, passed with --key.`,
		Usage: "faultline inspect <record> [flags]",
		Examples: []cli.Example{
			{Description: "Inspect the newest record in the store", Command: "faultline inspect latest"},
			{Description: "Decrypt a sealed record", Command: "faultline inspect 1723412345678901234-4021 --key /etc/faultline/seal.key"},
			{Description: "Show the faulting source line with context", Command: "faultline inspect latest --source"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("inspect", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runInspect(logger, &params, args)
		},
	}
}

func runInspect(logger *slog.Logger, params *inspectParams, args []string) error {
	if len(args) != 1 {
		return cli.Validation("expected one record name or path\n\nUsage: faultline inspect <record> [flags]")
	}

	store, entry, err := openTarget(&params.StoreAccess, args[0])
	if err != nil {
		return err
	}
	envelope, err := readEnvelope(&params.StoreAccess, store, entry)
	if err != nil {
		return err
	}

	if params.Diag {
		fmt.Println(envelope.Diagnostic())
		return nil
	}

	note, err := store.Note(entry.Name)
	if err != nil {
		return cli.Internal("reading note for %s: %w", entry.Name, err)
	}

	result := inspectResult{
		Entry:      entry,
		Envelope:   envelope,
		Diagnostic: envelope.Diagnostic(),
		Note:       note,
	}
	if emitted, err := params.EmitJSON(result); emitted {
		return err
	}
	if emitted, err := params.EmitYAML(result); emitted {
		return err
	}

	renderEnvelope(os.Stdout, entry, envelope, note)

	if params.Source {
		if envelope.File == "" {
			logger.Warn("record carries no source location", "record", entry.Name)
		} else {
			renderSource(os.Stdout, envelope, params.Context)
		}
	}
	return nil
}

var (
	diagStyle  = lipgloss.NewStyle().Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// field writes one aligned label/value line, skipping empty values.
// The label is padded before styling so the ANSI codes do not throw
// off the column width.
func field(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%s  %s\n", faintStyle.Render(fmt.Sprintf("%-10s", label)), value)
}

func renderEnvelope(w io.Writer, entry crashlog.Entry, envelope *crashlog.Envelope, note string) {
	fmt.Fprintf(w, "%s\n\n", diagStyle.Render(envelope.Diagnostic()))

	field(w, "Record", entry.Name)
	field(w, "Captured", envelope.CapturedAt.Format("2006-01-02 15:04:05 MST"))

	process := envelope.Executable
	if envelope.PID != 0 {
		process += fmt.Sprintf(" (pid %d)", envelope.PID)
	}
	if envelope.Hostname != "" {
		process += " on " + envelope.Hostname
	}
	field(w, "Process", strings.TrimSpace(process))

	platform := envelope.Runtime
	if envelope.OS != "" || envelope.Arch != "" {
		platform = strings.TrimSpace(platform + " " + envelope.OS + "/" + envelope.Arch)
	}
	field(w, "Platform", platform)
	field(w, "Kind", envelope.Kind.String())
	field(w, "Labels", formatLabels(envelope.Labels))

	storage := cli.FormatSize(entry.Size)
	if entry.Compression != "" && entry.Compression != "none" {
		storage += " " + entry.Compression
	}
	if entry.Sealed {
		storage += " sealed"
	}
	field(w, "Storage", storage)
	if len(envelope.Flight) > 0 {
		field(w, "Flight", fmt.Sprintf("%s recorded (use 'faultline flight %s')", cli.FormatSize(int64(len(envelope.Flight))), strings.TrimSuffix(entry.Name, crashlog.FileSuffix)))
	}

	if note != "" {
		fmt.Fprintf(w, "\n%s\n%s", faintStyle.Render("Notes"), note)
	}
}

// formatLabels renders a label map as sorted key=value pairs so output
// is stable across runs.
func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+labels[key])
	}
	return strings.Join(pairs, " ")
}

// renderSource prints the faulting line with surrounding context when
// the recorded source path is readable on this machine. Highlighting
// is applied only on a terminal so piped output stays plain.
func renderSource(w io.Writer, envelope *crashlog.Envelope, contextLines int) {
	data, err := os.ReadFile(envelope.File)
	if err != nil {
		fmt.Fprintf(w, "\n%s\n", faintStyle.Render("source not available: "+err.Error()))
		return
	}

	lines := strings.Split(string(data), "\n")
	if envelope.Line < 1 || envelope.Line > len(lines) {
		fmt.Fprintf(w, "\n%s\n", faintStyle.Render(fmt.Sprintf("source line %d out of range for %s", envelope.Line, envelope.File)))
		return
	}
	if contextLines < 0 {
		contextLines = 0
	}
	start := envelope.Line - contextLines
	if start < 1 {
		start = 1
	}
	end := envelope.Line + contextLines
	if end > len(lines) {
		end = len(lines)
	}

	snippet := strings.Join(lines[start-1:end], "\n")
	if term.IsTerminal(int(os.Stdout.Fd())) {
		snippet = highlightSource(snippet, envelope.File)
	}

	gutter := len(strconv.Itoa(end))
	fmt.Fprintf(w, "\n%s\n", faintStyle.Render(fmt.Sprintf("%s:%d", envelope.File, envelope.Line)))
	for i, line := range strings.Split(snippet, "\n") {
		number := start + i
		marker := "  "
		if number == envelope.Line {
			marker = diagStyle.Render(">") + " "
		}
		fmt.Fprintf(w, "%s%*d | %s\n", marker, gutter, number, line)
		if number == envelope.Line && envelope.Column > 0 {
			fmt.Fprintf(w, "  %s | %s^\n", strings.Repeat(" ", gutter), strings.Repeat(" ", envelope.Column-1))
		}
	}
}

// highlightSource runs the snippet through syntax highlighting, falling
// back to the plain text when the highlighter rejects it.
func highlightSource(code, filename string) string {
	var highlighted bytes.Buffer
	if err := quick.Highlight(&highlighted, code, languageForFile(filename), "terminal256", "monokai"); err != nil {
		return code
	}
	return highlighted.String()
}

// languageForFile maps a source file extension to a lexer name. The
// empty string lets the highlighter fall back to plain text.
func languageForFile(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".go":
		return "go"
	case ".rs":
		return "rust"
	case ".c", ".h":
		return "c"
	case ".py":
		return "python"
	case ".zig":
		return "zig"
	default:
		return ""
	}
}
