// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package history implements the faultline subcommands backed by the
// crash index: scan, history, and history stats. The index answers
// questions the store alone cannot ("which executable crashes most",
// "anything new since the rollout") without decoding every record.
package history
