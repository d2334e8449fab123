// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashlog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/faultline-project/faultline/lib/secret"
)

// FileSuffix is the filename suffix of crash files.
const FileSuffix = ".crash"

// Store is a directory of crash files. File names are
// "<unixnano>-<pid>.crash", which sorts oldest first, so listing and
// pruning need no metadata beyond the directory itself.
type Store struct {
	dir string
}

// OpenStore opens (creating if needed) a crash store directory. The
// directory is created 0700: crash files can carry message text and
// log tails that were never meant to leave the machine.
func OpenStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("crash store directory is empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating crash store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Entry describes one crash file in a store, from its name and header
// only. Sealed entries can be listed without the key.
type Entry struct {
	// Name is the file name within the store.
	Name string `json:"name"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// CapturedAt and PID are parsed from the file name.
	CapturedAt time.Time `json:"captured_at"`
	PID        int       `json:"pid"`

	// Sealed reports whether the payload is encrypted.
	Sealed bool `json:"sealed"`

	// Compression is the payload compression algorithm name.
	Compression string `json:"compression"`
}

// path returns the absolute path of the entry within dir.
func (e Entry) path(dir string) string {
	return filepath.Join(dir, e.Name)
}

// Write encodes the envelope and writes it to the store atomically:
// temporary file, fsync, rename, parent directory sync. Returns the
// file name within the store.
func (s *Store) Write(envelope *Envelope, options Options) (string, error) {
	data, err := Encode(envelope, options)
	if err != nil {
		return "", err
	}

	name := fileName(envelope)
	if err := s.writeAtomic(name, data); err != nil {
		return "", err
	}
	return name, nil
}

// Put writes an already-encoded crash file received from elsewhere (a
// bundle import) into the store unchanged. The name must be a plain
// crash file name and the data must parse as a crash file; names
// already present are rejected with an error wrapping fs.ErrExist, so
// repeated imports are detectable and harmless.
func (s *Store) Put(name string, data []byte) error {
	if name != filepath.Base(name) || !strings.HasSuffix(name, FileSuffix) {
		return fmt.Errorf("crash file name %q is not valid", name)
	}
	if _, err := ParseHeader(data); err != nil {
		return fmt.Errorf("putting %s: %w", name, err)
	}
	if _, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
		return fmt.Errorf("putting %s: %w", name, fs.ErrExist)
	}
	return s.writeAtomic(name, data)
}

// writeAtomic writes data under name via temporary file, fsync,
// rename, and parent directory sync.
func (s *Store) writeAtomic(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary crash file: %w", err)
	}

	// Write, sync, close, in that order. If any step fails, remove
	// the temporary file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary crash file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary crash file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary crash file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming crash file into place: %w", err)
	}

	// Sync the parent directory so the rename survives power loss.
	if parent, err := os.Open(s.dir); err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}

// Read loads and decodes one crash file by name. The key is required
// for sealed files; it is borrowed, never closed.
func (s *Store) Read(name string, key *secret.Buffer) (*Envelope, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}
	return Decode(data, key)
}

// ReadHeader loads only the fixed header of one crash file.
func (s *Store) ReadHeader(name string) (Header, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return Header{}, err
	}
	return ParseHeader(data)
}

// Stat returns the entry for one crash file by name, without decoding
// the payload.
func (s *Store) Stat(name string) (Entry, error) {
	info, err := os.Stat(filepath.Join(s.dir, name))
	if err != nil {
		return Entry{}, err
	}
	header, err := s.ReadHeader(name)
	if err != nil {
		return Entry{}, err
	}
	capturedAt, pid := parseFileName(name)
	return Entry{
		Name:        name,
		Size:        info.Size(),
		CapturedAt:  capturedAt,
		PID:         pid,
		Sealed:      header.Sealed(),
		Compression: header.Compression.String(),
	}, nil
}

// List returns all crash files in the store, oldest first. Files whose
// header cannot be parsed are skipped: a half-written temporary file
// or foreign debris must not break listing.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading crash store directory: %w", err)
	}

	var entries []Entry
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if dirEntry.IsDir() || !strings.HasSuffix(name, FileSuffix) {
			continue
		}

		info, err := dirEntry.Info()
		if err != nil {
			continue
		}

		header, err := s.ReadHeader(name)
		if err != nil {
			continue
		}

		capturedAt, pid := parseFileName(name)
		entries = append(entries, Entry{
			Name:        name,
			Size:        info.Size(),
			CapturedAt:  capturedAt,
			PID:         pid,
			Sealed:      header.Sealed(),
			Compression: header.Compression.String(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Latest returns the newest crash file, or nil when the store is
// empty.
func (s *Store) Latest() (*Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[len(entries)-1], nil
}

// Prune removes the oldest crash files until at most keep remain,
// along with their note sidecars. Returns the removed file names.
func (s *Store) Prune(keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("prune keep count is negative: %d", keep)
	}
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(entries) <= keep {
		return nil, nil
	}

	var removed []string
	for _, entry := range entries[:len(entries)-keep] {
		if err := os.Remove(entry.path(s.dir)); err != nil {
			return removed, fmt.Errorf("removing crash file %s: %w", entry.Name, err)
		}
		// Best effort: the sidecar may not exist.
		os.Remove(s.notePath(entry.Name))
		removed = append(removed, entry.Name)
	}
	return removed, nil
}

// fileName builds the store file name for an envelope. The capture
// time orders the directory; the PID disambiguates two processes that
// crash in the same nanosecond.
func fileName(envelope *Envelope) string {
	capturedAt := envelope.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	return strconv.FormatInt(capturedAt.UnixNano(), 10) + "-" + strconv.Itoa(envelope.PID) + FileSuffix
}

// parseFileName recovers the capture time and PID from a store file
// name. Returns zero values for names written by other tools.
func parseFileName(name string) (time.Time, int) {
	base := strings.TrimSuffix(name, FileSuffix)
	timestamp, pidText, found := strings.Cut(base, "-")
	if !found {
		return time.Time{}, 0
	}
	nanos, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return time.Time{}, 0
	}
	pid, err := strconv.Atoi(pidText)
	if err != nil {
		return time.Unix(0, nanos).UTC(), 0
	}
	return time.Unix(0, nanos).UTC(), pid
}
