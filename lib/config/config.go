// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/secret"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for Faultline.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Store configures the crash record store.
	Store StoreConfig `yaml:"store"`

	// Collector configures the collector daemon.
	Collector CollectorConfig `yaml:"collector"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains fields that can be overridden per environment.
type Overrides struct {
	Store     *StoreConfig     `yaml:"store,omitempty"`
	Collector *CollectorConfig `yaml:"collector,omitempty"`
}

// StoreConfig configures the crash record store.
type StoreConfig struct {
	// Dir is the directory holding .crash files and the index.
	// Default: ~/.local/state/faultline (development), set it to
	// /var/lib/faultline for system deployments.
	Dir string `yaml:"dir"`

	// Retain is the maximum number of crash records kept; older
	// records are pruned after each ingest. 0 keeps everything.
	// Default: 500
	Retain int `yaml:"retain"`

	// Compression selects the crash file payload compression.
	// Values: "none", "lz4", "zstd"
	// Default: lz4
	Compression string `yaml:"compression"`

	// SealKeyFile is the path to a hex-encoded 32-byte key. When set,
	// stored crash files are sealed with it. Empty stores plaintext.
	SealKeyFile string `yaml:"seal_key_file"`
}

// CollectorConfig configures the collector daemon.
type CollectorConfig struct {
	// Socket is the Unix socket path the collector listens on.
	// Default: /run/faultline/collectd.sock
	Socket string `yaml:"socket"`

	// Index is the path to the SQLite crash index.
	// Default: <store.dir>/index.db
	Index string `yaml:"index"`

	// ScrubPolicy is the path to a JSONC redaction rule file applied
	// to relayed records before they are stored. Empty uses the
	// built-in policy.
	ScrubPolicy string `yaml:"scrub_policy"`

	// RescanOnStart reconciles the index against the store directory
	// when the collector starts.
	// Default: false (development), true (production)
	RescanOnStart bool `yaml:"rescan_on_start"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDir := filepath.Join(homeDir, ".local", "state", "faultline")

	return &Config{
		Environment: Development,
		Store: StoreConfig{
			Dir:         defaultDir,
			Retain:      500,
			Compression: "lz4",
		},
		Collector: CollectorConfig{
			Socket:        crashlog.DefaultSocketPath,
			RescanOnStart: false,
		},
	}
}

// Load loads configuration from the FAULTLINE_CONFIG environment
// variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if FAULTLINE_CONFIG is not set,
// this fails. This ensures deterministic, auditable configuration with
// no hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("FAULTLINE_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("FAULTLINE_CONFIG environment variable not set; " +
			"set it to the path of your faultline.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values - this ensures deterministic, auditable
// configuration. The only expansion performed is ${HOME} and similar
// path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: a collector restart repairs the index
		// rather than trusting whatever the previous run left.
		if overrides == nil {
			overrides = &Overrides{
				Collector: &CollectorConfig{
					RescanOnStart: true,
				},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Store != nil {
		if overrides.Store.Dir != "" {
			c.Store.Dir = overrides.Store.Dir
		}
		if overrides.Store.Retain != 0 {
			c.Store.Retain = overrides.Store.Retain
		}
		if overrides.Store.Compression != "" {
			c.Store.Compression = overrides.Store.Compression
		}
		if overrides.Store.SealKeyFile != "" {
			c.Store.SealKeyFile = overrides.Store.SealKeyFile
		}
	}

	if overrides.Collector != nil {
		if overrides.Collector.Socket != "" {
			c.Collector.Socket = overrides.Collector.Socket
		}
		if overrides.Collector.Index != "" {
			c.Collector.Index = overrides.Collector.Index
		}
		if overrides.Collector.ScrubPolicy != "" {
			c.Collector.ScrubPolicy = overrides.Collector.ScrubPolicy
		}
		// RescanOnStart is a bool, so we always apply it from overrides.
		c.Collector.RescanOnStart = overrides.Collector.RescanOnStart
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"FAULTLINE_DIR": c.Store.Dir,
		"HOME":          os.Getenv("HOME"),
	}

	c.Store.Dir = expandVars(c.Store.Dir, vars)
	vars["FAULTLINE_DIR"] = c.Store.Dir // Update for dependent paths.

	c.Store.SealKeyFile = expandVars(c.Store.SealKeyFile, vars)
	c.Collector.Socket = expandVars(c.Collector.Socket, vars)
	c.Collector.Index = expandVars(c.Collector.Index, vars)
	c.Collector.ScrubPolicy = expandVars(c.Collector.ScrubPolicy, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// compressionValues are the accepted store.compression settings.
var compressionValues = []string{"none", "lz4", "zstd"}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Store.Dir == "" {
		errs = append(errs, fmt.Errorf("store.dir is required"))
	}

	if c.Store.Retain < 0 {
		errs = append(errs, fmt.Errorf("store.retain must not be negative"))
	}

	if !contains(compressionValues, c.Store.Compression) {
		errs = append(errs, fmt.Errorf("store.compression must be one of: %v", compressionValues))
	}

	if c.Collector.Socket == "" {
		errs = append(errs, fmt.Errorf("collector.socket is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// IndexPath returns the crash index location: Collector.Index if set,
// otherwise index.db inside the store directory.
func (c *Config) IndexPath() string {
	if c.Collector.Index != "" {
		return c.Collector.Index
	}
	return filepath.Join(c.Store.Dir, "index.db")
}

// CompressionTag maps the configured compression name to its crash
// file tag.
func (c *Config) CompressionTag() (crashlog.CompressionTag, error) {
	switch c.Store.Compression {
	case "none":
		return crashlog.CompressionNone, nil
	case "lz4":
		return crashlog.CompressionLZ4, nil
	case "zstd":
		return crashlog.CompressionZstd, nil
	}
	return 0, fmt.Errorf("unknown compression %q", c.Store.Compression)
}

// LoadSealKey loads and decodes the configured sealing key. Returns
// (nil, nil) when no key file is configured. The caller owns the
// returned buffer and must Close it.
func (c *Config) LoadSealKey() (*secret.Buffer, error) {
	if c.Store.SealKeyFile == "" {
		return nil, nil
	}

	key, err := crashlog.LoadKeyFile(c.Store.SealKeyFile)
	if err != nil {
		return nil, fmt.Errorf("store.seal_key_file: %w", err)
	}
	return key, nil
}

// EnsurePaths creates the configured directories if they don't exist.
// The store directory is 0700 because crash records can carry message
// text and log tails that were never meant to leave the machine; the
// socket directory is 0755 so handler processes can reach the socket.
func (c *Config) EnsurePaths() error {
	if c.Store.Dir != "" {
		if err := os.MkdirAll(c.Store.Dir, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", c.Store.Dir, err)
		}
	}

	if c.Collector.Socket != "" {
		socketDir := filepath.Dir(c.Collector.Socket)
		if err := os.MkdirAll(socketDir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", socketDir, err)
		}
	}

	if c.Collector.Index != "" {
		indexDir := filepath.Dir(c.Collector.Index)
		if err := os.MkdirAll(indexDir, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", indexDir, err)
		}
	}

	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
