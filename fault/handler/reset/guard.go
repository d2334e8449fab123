// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package reset

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/faultline-project/faultline/lib/codec"
)

// guardState is the boot-loop guard: the times of recent resets,
// oldest first. Stored as deterministic CBOR and rewritten atomically
// before every exec.
type guardState struct {
	Resets []time.Time `cbor:"resets"`
}

// admit decides whether another reset fits the budget. Entries older
// than the window are pruned; when the remaining count is below
// budget, now is appended and admit reports true. The state is not
// modified on denial.
func (g *guardState) admit(now time.Time, window time.Duration, budget int) bool {
	recent := g.Resets[:0]
	for _, reset := range g.Resets {
		if now.Sub(reset) <= window {
			recent = append(recent, reset)
		}
	}
	g.Resets = recent

	if len(g.Resets) >= budget {
		return false
	}
	g.Resets = append(g.Resets, now)
	return true
}

// loadGuard reads the guard state. A missing or unreadable file
// yields an empty state: a guard that cannot be read must not block
// recovery, and the next save rewrites it whole.
func loadGuard(path string) guardState {
	data, err := os.ReadFile(path)
	if err != nil {
		return guardState{}
	}
	var state guardState
	if err := codec.Unmarshal(data, &state); err != nil {
		return guardState{}
	}
	return state
}

// saveGuard writes the guard state atomically: temporary file, fsync,
// rename, parent directory sync. The state must be on disk before the
// exec, or the restarted process starts with a clean budget.
func saveGuard(path string, state guardState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating guard directory: %w", err)
	}

	data, err := codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding guard state: %w", err)
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary guard file: %w", err)
	}

	// Write, sync, close. If any step fails, remove the temporary
	// file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary guard file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary guard file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary guard file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming guard file into place: %w", err)
	}

	if parent, err := os.Open(filepath.Dir(path)); err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}
