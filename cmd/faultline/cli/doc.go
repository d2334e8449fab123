// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the faultline CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in
// cmd/faultline/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples. Run receives a context cancelled on SIGINT/SIGTERM and
// a logger scoped for the command (text on a terminal, JSON otherwise).
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Errors returned from Run map to exit codes. [CommandError] carries a
// category (validation, not found, conflict, transient, internal), each
// with its own code, so scripts can branch on why faultline failed
// without parsing stderr; [ExitError] exits with a bare code for
// commands whose non-zero exit is an answer rather than a failure.
package cli
