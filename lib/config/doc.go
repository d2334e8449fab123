// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the Faultline
// collector and its tooling.
//
// Configuration is loaded from a single file specified by either the
// FAULTLINE_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks, no ~/.config
// discovery, and no automatic file search. This ensures deterministic,
// auditable configuration with no hidden overrides.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production defaults are stricter: the
// collector rescans its index on start so a crash of the collector
// itself cannot leave stale query results behind.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${FAULTLINE_DIR}, and ${VAR:-default} patterns are
// expanded. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Store and Collector sections
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
package config
