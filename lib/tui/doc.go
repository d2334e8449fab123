// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides shared terminal user interface components for
// faultline's interactive viewers. Built on bubbletea (Elm
// architecture), these components cover the patterns the viewers have
// in common: theming, scrollbars, fuzzy matching, text-entry modals,
// and ANSI-aware overlay splicing.
//
// Domain-specific viewers own their data sources, layout, and
// rendering; this package keeps the look and keyboard conventions
// consistent between them.
package tui
