// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for faultline's terminal UIs. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
//
// The fields cover universal chrome (text, selection, borders) plus
// the semantic category that recurs everywhere in this domain: the
// fault kind. Each kind gets a stable color so a list of crashes is
// scannable by hue before anyone reads a message.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Fault kind colors.
	KindPanic       lipgloss.Color
	KindIndex       lipgloss.Color
	KindSlice       lipgloss.Color
	KindDivide      lipgloss.Color
	KindAssert      lipgloss.Color
	KindUnreachable lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Sealed records that cannot be opened without a key.
	SealedForeground lipgloss.Color

	// Background tint for characters matched by the fuzzy filter.
	SearchHighlightBackground lipgloss.Color

	// Positive accents: checked task items, confirmation notices.
	GoodForeground lipgloss.Color

	// Modal overlays.
	ModalForeground lipgloss.Color
	ModalBackground lipgloss.Color
}

// KindColor returns the color for a fault kind name. Unknown kinds
// (and records whose kind could not be read) get FaintText.
func (theme Theme) KindColor(kind string) lipgloss.Color {
	switch kind {
	case "panic":
		return theme.KindPanic
	case "index":
		return theme.KindIndex
	case "slice":
		return theme.KindSlice
	case "divide":
		return theme.KindDivide
	case "assert":
		return theme.KindAssert
	case "unreachable":
		return theme.KindUnreachable
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed
// for 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	KindPanic:       lipgloss.Color("196"), // bright red: explicit panic
	KindIndex:       lipgloss.Color("208"), // orange
	KindSlice:       lipgloss.Color("214"), // amber
	KindDivide:      lipgloss.Color("220"), // yellow
	KindAssert:      lipgloss.Color("141"), // light purple
	KindUnreachable: lipgloss.Color("201"), // magenta: should never happen

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	SealedForeground: lipgloss.Color("245"),

	SearchHighlightBackground: lipgloss.Color("58"), // dark amber

	GoodForeground: lipgloss.Color("114"), // green

	ModalForeground: lipgloss.Color("252"),
	ModalBackground: lipgloss.Color("237"),
}
