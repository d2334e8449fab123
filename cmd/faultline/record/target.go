// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
	"github.com/faultline-project/faultline/lib/crashlog"
)

// openTarget resolves a record argument to a store and an entry. An
// existing file path is opened in place: its directory becomes the
// store, so note sidecars resolve next to the file. Anything else is
// looked up by name in the configured store, with "latest" selecting
// the newest record.
func openTarget(access *cli.StoreAccess, arg string) (*crashlog.Store, crashlog.Entry, error) {
	if info, err := os.Stat(arg); err == nil && info.Mode().IsRegular() {
		dir := filepath.Dir(arg)
		store, err := crashlog.OpenStore(dir)
		if err != nil {
			return nil, crashlog.Entry{}, cli.Internal("opening %s: %w", dir, err)
		}
		entry, err := store.Stat(filepath.Base(arg))
		if err != nil {
			return nil, crashlog.Entry{}, cli.Validation("%s is not a crash file: %v", arg, err)
		}
		return store, entry, nil
	}

	if err := access.Resolve(); err != nil {
		return nil, crashlog.Entry{}, err
	}
	store, err := access.OpenStore()
	if err != nil {
		return nil, crashlog.Entry{}, err
	}

	if arg == "latest" {
		latest, err := store.Latest()
		if err != nil {
			return nil, crashlog.Entry{}, cli.Internal("listing crash store: %w", err)
		}
		if latest == nil {
			return nil, crashlog.Entry{}, cli.NotFound("crash store %s is empty", store.Dir())
		}
		return store, *latest, nil
	}

	name := arg
	if !strings.HasSuffix(name, crashlog.FileSuffix) {
		name += crashlog.FileSuffix
	}
	entry, err := store.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, crashlog.Entry{}, cli.NotFound("record %s not found in %s", arg, store.Dir()).
				WithHint("Run 'faultline list' to see stored records.")
		}
		return nil, crashlog.Entry{}, cli.Internal("reading record %s: %w", arg, err)
	}
	return store, entry, nil
}

// readEnvelope decodes a record's payload, loading the seal key from
// flags when the record needs one.
func readEnvelope(access *cli.StoreAccess, store *crashlog.Store, entry crashlog.Entry) (*crashlog.Envelope, error) {
	key, err := access.Key()
	if err != nil {
		return nil, err
	}
	if key != nil {
		defer key.Close()
	}
	if entry.Sealed && key == nil {
		return nil, cli.Validation("record %s is sealed", entry.Name).
			WithHint("Pass --key with the store's seal key file to decrypt it.")
	}

	envelope, err := store.Read(entry.Name, key)
	if err != nil {
		if errors.Is(err, crashlog.ErrEncrypted) {
			return nil, cli.Validation("record %s is sealed", entry.Name).
				WithHint("Pass --key with the store's seal key file to decrypt it.")
		}
		return nil, cli.Internal("decoding record %s: %w", entry.Name, err)
	}
	return envelope, nil
}
