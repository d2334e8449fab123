// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle implements the faultline subcommands that move crash
// records between machines: export, import, and keygen. Bundles are
// zstd-compressed tar archives, optionally sealed to age recipients,
// so an edge box can hand its crashes to an analysis host without
// sharing store keys or shell access.
package bundle
