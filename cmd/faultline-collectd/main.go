// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/faultline-project/faultline/lib/config"
	"github.com/faultline-project/faultline/lib/crashindex"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/process"
	"github.com/faultline-project/faultline/lib/scrub"
	"github.com/faultline-project/faultline/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var configPath string
	var socketOverride string
	var showVersion bool
	flag.StringVar(&configPath, "config", "", "path to faultline.yaml (defaults to $FAULTLINE_CONFIG)")
	flag.StringVar(&socketOverride, "socket", "", "listen socket path (overrides the config)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("faultline-collectd %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if os.Getenv("FAULTLINE_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := crashlog.OpenStore(cfg.Store.Dir)
	if err != nil {
		return err
	}

	key, err := cfg.LoadSealKey()
	if err != nil {
		return err
	}
	if key != nil {
		defer key.Close()
	}

	compression, err := cfg.CompressionTag()
	if err != nil {
		return err
	}

	policy, err := loadPolicy(cfg)
	if err != nil {
		return err
	}

	index, err := crashindex.Open(crashindex.Config{
		Path:   cfg.IndexPath(),
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer index.Close()

	logger.Info("collector starting",
		"environment", cfg.Environment,
		"store", cfg.Store.Dir,
		"index", cfg.IndexPath(),
		"retain", cfg.Store.Retain,
		"compression", compression.String(),
		"sealed", key != nil,
		"scrub_rules", len(policy.RuleNames()),
	)

	// Reconcile the index against the store directory before serving.
	// Collection must not stall on a broken index, so a failed rescan
	// is a warning: the store keeps the truth either way.
	if cfg.Collector.RescanOnStart {
		added, removed, err := index.Rescan(ctx, store, key)
		if err != nil {
			logger.Warn("startup rescan failed", "error", err)
		} else if added > 0 || removed > 0 {
			logger.Info("startup rescan reconciled index",
				"added", added, "removed", removed)
		}
	}

	collector := &Collector{
		store:       store,
		index:       index,
		policy:      policy,
		key:         key,
		compression: compression,
		retain:      cfg.Store.Retain,
		logger:      logger,
	}

	socketPath := cfg.Collector.Socket
	if socketOverride != "" {
		socketPath = socketOverride
	}
	return collector.Serve(ctx, socketPath)
}

// loadConfig loads the configuration from --config when given,
// otherwise from $FAULTLINE_CONFIG.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// loadPolicy loads the configured scrub policy file, or the built-in
// policy when none is configured.
func loadPolicy(cfg *config.Config) (*scrub.Policy, error) {
	if cfg.Collector.ScrubPolicy == "" {
		return scrub.Default(), nil
	}
	policy, err := scrub.Load(cfg.Collector.ScrubPolicy)
	if err != nil {
		return nil, fmt.Errorf("loading scrub policy: %w", err)
	}
	return policy, nil
}
