// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for Faultline binaries.
//
// Version information is injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/faultline-project/faultline/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Info returns the one-line version string used by --version output,
// for example "0.1.0-dev (4f2c91a, 2026-08-21T10:00:00Z)".
func Info() string {
	commit := GitCommit
	if GitDirty == "true" {
		commit += "+dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, BuildTime)
}

// Full returns Info plus toolchain and platform details, one per line.
func Full() string {
	return fmt.Sprintf("%s\n  go: %s\n  platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number.
func Short() string {
	return Version
}
