// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// NoteSuffix is the filename suffix of note sidecars. Notes are plain
// Markdown so any viewer can render them.
const NoteSuffix = ".notes.md"

// NoteName returns the note sidecar file name for a crash file name.
func NoteName(name string) string {
	return strings.TrimSuffix(name, FileSuffix) + NoteSuffix
}

// notePath returns the sidecar path for a crash file name.
func (s *Store) notePath(name string) string {
	return filepath.Join(s.dir, NoteName(name))
}

// Annotate appends a Markdown note to the crash file's sidecar,
// creating it on first use. Each note gets a timestamp heading, so the
// sidecar reads as a triage journal.
func (s *Store) Annotate(name string, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("note text is empty")
	}
	if _, err := os.Stat(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("annotating %s: %w", name, err)
	}

	file, err := os.OpenFile(s.notePath(name), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("opening note sidecar: %w", err)
	}
	defer file.Close()

	stamp := time.Now().UTC().Format(time.RFC3339)
	if _, err := fmt.Fprintf(file, "## %s\n\n%s\n\n", stamp, strings.TrimRight(text, "\n")); err != nil {
		return fmt.Errorf("appending note: %w", err)
	}
	return nil
}

// PutNote writes a note sidecar received from elsewhere (a bundle
// import), only when the record has no sidecar yet. Existing notes
// win: an import never overwrites local triage work.
func (s *Store) PutNote(name string, text string) error {
	path := s.notePath(name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		return fmt.Errorf("writing note sidecar: %w", err)
	}
	return nil
}

// Note returns the crash file's sidecar content, or "" when no note
// has been written.
func (s *Store) Note(name string) (string, error) {
	data, err := os.ReadFile(s.notePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading note sidecar: %w", err)
	}
	return string(data), nil
}
