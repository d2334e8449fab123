// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package crashui implements a terminal user interface for browsing
// crash records. Built on bubbletea (Elm architecture), it provides a
// split-pane view with a filterable record list on the left and a
// rich detail pane on the right: diagnostic, process identity, source
// context, triage notes rendered as markdown, and the flight recorder
// tail.
//
// Generic UI components (theme, scrollbars, fuzzy matching, the note
// modal) live in [tui] and are re-exported here for internal use.
// Crash-specific logic (the store-backed data source, list and detail
// rendering, key bindings) stays in this package.
//
// The [Source] interface decouples the UI from the crash store:
// [StoreSource] reads a local store directory, decrypting sealed
// records when a key is available and degrading gracefully (locked
// rows) when it is not.
package crashui
