// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"archive/tar"
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/sealed"
	"github.com/faultline-project/faultline/lib/secret"
	"github.com/faultline-project/faultline/lib/version"
)

// Schema is the manifest schema version.
const Schema = 1

// manifestName is the manifest's file name inside the archive.
const manifestName = "manifest.json"

// ageHeader is the first line of a binary age stream, used to detect
// sealed bundles without a wrapper format.
const ageHeader = "age-encryption.org/v1"

// maxFileSize caps one decompressed file during import. Crash files
// are small (a fault record plus a flight recorder tail); anything
// near this limit is a hostile or corrupted bundle, not a record.
const maxFileSize = 64 << 20

// Manifest describes the records carried by a bundle.
type Manifest struct {
	Schema    int       `json:"schema"`
	CreatedAt time.Time `json:"created_at"`

	// Hostname and Tool identify where and by what the bundle was
	// written.
	Hostname string `json:"hostname,omitempty"`
	Tool     string `json:"tool,omitempty"`

	// Records lists the bundled crash files with their store metadata.
	Records []crashlog.Entry `json:"records"`
}

// WriteOptions control bundle writing.
type WriteOptions struct {
	// Recipients seals the bundle to these age public keys. Empty
	// writes a plain bundle.
	Recipients []string
}

// Write streams the given records from the store into w: manifest
// first, then each crash file and its note sidecar when one exists.
func Write(w io.Writer, store *crashlog.Store, entries []crashlog.Entry, options WriteOptions) error {
	var out io.Writer = w
	var sealWriter io.WriteCloser
	if len(options.Recipients) > 0 {
		var err error
		sealWriter, err = sealed.Encrypt(w, options.Recipients)
		if err != nil {
			return err
		}
		out = sealWriter
	}

	zstdWriter, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("creating bundle compressor: %w", err)
	}
	tarWriter := tar.NewWriter(zstdWriter)

	manifest := Manifest{
		Schema:    Schema,
		CreatedAt: time.Now().UTC(),
		Tool:      "faultline " + version.Short(),
		Records:   entries,
	}
	manifest.Hostname, _ = os.Hostname()
	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding bundle manifest: %w", err)
	}
	if err := writeTarFile(tarWriter, manifestName, manifestData, manifest.CreatedAt); err != nil {
		return err
	}

	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(store.Dir(), entry.Name))
		if err != nil {
			return fmt.Errorf("reading record %s: %w", entry.Name, err)
		}
		if err := writeTarFile(tarWriter, entry.Name, data, entry.CapturedAt); err != nil {
			return err
		}

		note, err := store.Note(entry.Name)
		if err != nil {
			return err
		}
		if note != "" {
			if err := writeTarFile(tarWriter, crashlog.NoteName(entry.Name), []byte(note), entry.CapturedAt); err != nil {
				return err
			}
		}
	}

	// Close innermost out: tar trailer, zstd frame, age final chunk.
	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("finishing bundle archive: %w", err)
	}
	if err := zstdWriter.Close(); err != nil {
		return fmt.Errorf("finishing bundle compression: %w", err)
	}
	if sealWriter != nil {
		if err := sealWriter.Close(); err != nil {
			return fmt.Errorf("finishing bundle seal: %w", err)
		}
	}
	return nil
}

func writeTarFile(tarWriter *tar.Writer, name string, data []byte, modTime time.Time) error {
	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     0600,
		Size:     int64(len(data)),
		ModTime:  modTime,
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("writing bundle entry %s: %w", name, err)
	}
	if _, err := tarWriter.Write(data); err != nil {
		return fmt.Errorf("writing bundle entry %s: %w", name, err)
	}
	return nil
}

// ErrSealedBundle reports a sealed bundle read without an identity.
var ErrSealedBundle = errors.New("bundle is sealed and no identity was given")

// ReadResult summarizes an import.
type ReadResult struct {
	// Manifest is the bundle's manifest, zero when the bundle carries
	// none.
	Manifest Manifest

	// Imported and Skipped are the record names written to the store
	// and the names that were already present.
	Imported []string
	Skipped  []string
}

// Read unpacks a bundle stream into the store. Sealed bundles need the
// matching age identity; plain bundles ignore it. Records already in
// the store are skipped, never overwritten, so importing the same
// bundle twice is harmless. On error the returned result still counts
// everything imported before the failure.
func Read(r io.Reader, store *crashlog.Store, identity *secret.Buffer) (*ReadResult, error) {
	buffered := bufio.NewReader(r)

	var in io.Reader = buffered
	if peeked, err := buffered.Peek(len(ageHeader)); err == nil && string(peeked) == ageHeader {
		if identity == nil {
			return nil, ErrSealedBundle
		}
		decrypted, err := sealed.Decrypt(buffered, identity)
		if err != nil {
			return nil, err
		}
		in = decrypted
	}

	zstdReader, err := zstd.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	defer zstdReader.Close()
	tarReader := tar.NewReader(zstdReader)

	result := &ReadResult{}
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("reading bundle: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		// Flatten any path a crafted bundle might carry; everything
		// lands directly in the store directory or not at all.
		name := path.Base(header.Name)

		data, err := readLimited(tarReader, name)
		if err != nil {
			return result, err
		}

		switch {
		case name == manifestName:
			if err := json.Unmarshal(data, &result.Manifest); err != nil {
				return result, fmt.Errorf("decoding bundle manifest: %w", err)
			}
		case strings.HasSuffix(name, crashlog.FileSuffix):
			err := store.Put(name, data)
			if errors.Is(err, fs.ErrExist) {
				result.Skipped = append(result.Skipped, name)
				continue
			}
			if err != nil {
				return result, err
			}
			result.Imported = append(result.Imported, name)
		case strings.HasSuffix(name, crashlog.NoteSuffix):
			crashName := strings.TrimSuffix(name, crashlog.NoteSuffix) + crashlog.FileSuffix
			if err := store.PutNote(crashName, string(data)); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading bundle entry %s: %w", name, err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("bundle entry %s exceeds %d bytes", name, maxFileSize)
	}
	return data, nil
}
