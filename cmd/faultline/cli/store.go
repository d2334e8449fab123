// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/faultline-project/faultline/lib/config"
	"github.com/faultline-project/faultline/lib/crashindex"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/secret"
)

// StoreAccess manages the store, index, and key flags for CLI commands
// that read the crash store directly. Resolution is all-or-nothing:
// when --dir is set, the config file is never consulted, so the command
// line fully describes the store it touches. Otherwise the config named
// by FAULTLINE_CONFIG applies, falling back to the built-in development
// defaults when the variable is unset.
//
// Implements [FlagBinder] so it integrates with the params struct
// system when embedded in command parameter structs.
type StoreAccess struct {
	Dir       string
	IndexPath string
	KeyFile   string

	resolved bool
}

// AddFlags registers --dir, --index, and --key.
func (a *StoreAccess) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&a.Dir, "dir", "", "crash store directory (default from config)")
	flagSet.StringVar(&a.IndexPath, "index", "", "crash index path (default <dir>/index.db)")
	flagSet.StringVar(&a.KeyFile, "key", "", "hex-encoded seal key file for sealed records")
}

// Resolve fills unset fields from the config file or the built-in
// defaults. Idempotent; OpenStore and OpenIndex call it internally.
func (a *StoreAccess) Resolve() error {
	if a.resolved {
		return nil
	}
	if a.Dir == "" {
		var cfg *config.Config
		if os.Getenv("FAULTLINE_CONFIG") != "" {
			loaded, err := config.Load()
			if err != nil {
				return Internal("loading config: %w", err)
			}
			cfg = loaded
		} else {
			cfg = config.Default()
		}
		a.Dir = cfg.Store.Dir
		if a.IndexPath == "" {
			a.IndexPath = cfg.IndexPath()
		}
		if a.KeyFile == "" {
			a.KeyFile = cfg.Store.SealKeyFile
		}
	}
	if a.IndexPath == "" {
		a.IndexPath = filepath.Join(a.Dir, "index.db")
	}
	a.resolved = true
	return nil
}

// OpenStore resolves the store directory and opens it.
func (a *StoreAccess) OpenStore() (*crashlog.Store, error) {
	if err := a.Resolve(); err != nil {
		return nil, err
	}
	store, err := crashlog.OpenStore(a.Dir)
	if err != nil {
		return nil, Internal("opening crash store: %w", err)
	}
	return store, nil
}

// OpenIndex resolves the index path and opens it. Read-only opens
// require the index to exist already; the scan command creates it.
func (a *StoreAccess) OpenIndex(readOnly bool, logger *slog.Logger) (*crashindex.Index, error) {
	if err := a.Resolve(); err != nil {
		return nil, err
	}
	if readOnly {
		if _, err := os.Stat(a.IndexPath); os.IsNotExist(err) {
			return nil, NotFound("crash index %s does not exist", a.IndexPath).
				WithHint("Run 'faultline scan' to build the index from the store directory.")
		}
	}
	index, err := crashindex.Open(crashindex.Config{
		Path:     a.IndexPath,
		ReadOnly: readOnly,
		Logger:   logger,
	})
	if err != nil {
		return nil, Internal("opening crash index: %w", err)
	}
	return index, nil
}

// Key loads the seal key named by --key or the config. Returns
// (nil, nil) when none is configured; reading a sealed record then
// fails with a pointer to --key. The caller owns the returned buffer
// and must Close it.
func (a *StoreAccess) Key() (*secret.Buffer, error) {
	if err := a.Resolve(); err != nil {
		return nil, err
	}
	if a.KeyFile == "" {
		return nil, nil
	}
	key, err := crashlog.LoadKeyFile(a.KeyFile)
	if err != nil {
		return nil, Validation("seal key %s: %w", a.KeyFile, err)
	}
	return key, nil
}
