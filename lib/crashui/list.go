// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column widths for the list table. The message column fills the
// remaining space; all others are fixed.
const (
	listMarkerWidth     = 2  // Kind dot + space.
	listTimeWidth       = 14 // "Jun 09 11:00" + two spaces.
	listExecutableWidth = 16 // Executable base name + two spaces.
)

// listTimeFormat is the compact capture timestamp shown per row. UTC,
// matching the CLI output, so timestamps agree between the viewer and
// scripts.
const listTimeFormat = "Jan 02 15:04"

// kindMarker returns the one-column marker for a row: a kind-colored
// dot for readable records, a hollow diamond for sealed records the
// viewer has no key for, and a hollow dot for records that failed to
// decode.
func kindMarker(theme Theme, item Item) string {
	switch {
	case item.Locked():
		return lipgloss.NewStyle().Foreground(theme.SealedForeground).Render("◇")
	case item.Envelope == nil:
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render("○")
	default:
		return lipgloss.NewStyle().Foreground(theme.KindColor(item.Kind())).Render("●")
	}
}

// ListRenderer handles the table-style rendering of crash records
// within a given width.
type ListRenderer struct {
	theme Theme
	width int
}

// NewListRenderer creates a ListRenderer for the given row width.
func NewListRenderer(theme Theme, width int) ListRenderer {
	return ListRenderer{theme: theme, width: width}
}

// RenderRow renders a single record as a formatted table row. The
// matchPositions parameter holds rune indices in the message matched
// by the fuzzy filter; those characters get the search highlight
// background.
//
// Row layout: marker + capture time + executable + message [+ ✎]
func (renderer ListRenderer) RenderRow(item Item, selected bool, matchPositions []int) string {
	base := lipgloss.NewStyle().Foreground(renderer.theme.NormalText)
	faint := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)
	if selected {
		base = base.
			Foreground(renderer.theme.SelectedForeground).
			Background(renderer.theme.SelectedBackground)
		faint = faint.Background(renderer.theme.SelectedBackground)
	}

	timeColumn := item.Entry.CapturedAt.UTC().Format(listTimeFormat)
	timeColumn += strings.Repeat(" ", listTimeWidth-len(timeColumn))

	executable := "-"
	if item.Envelope != nil && item.Envelope.Executable != "" {
		executable = filepath.Base(item.Envelope.Executable)
	}
	executable = padOrTruncate(executable, listExecutableWidth-2) + "  "

	messageWidth := renderer.width - listMarkerWidth - listTimeWidth - listExecutableWidth
	if messageWidth < 8 {
		messageWidth = 8
	}

	noteMarker := ""
	if item.Note != "" {
		noteMarker = " ✎"
		messageWidth -= 2
	}

	var message string
	switch {
	case item.Locked():
		message = lipgloss.NewStyle().
			Foreground(renderer.theme.SealedForeground).
			Background(base.GetBackground()).
			Render(padOrTruncate("sealed record (no key)", messageWidth))
	case item.Envelope == nil:
		message = faint.Render(padOrTruncate("unreadable record", messageWidth))
	default:
		message = renderer.renderMessage(item.Envelope.Message, messageWidth, base, selected, matchPositions)
	}

	row := kindMarker(renderer.theme, item) + base.Render(" ") +
		faint.Render(timeColumn) +
		base.Render(executable) +
		message
	if noteMarker != "" {
		row += faint.Render(noteMarker)
	}

	if selected {
		// Paint the remainder of the row so the selection bar spans
		// the full width.
		row = lipgloss.NewStyle().
			Background(renderer.theme.SelectedBackground).
			Width(renderer.width).
			MaxWidth(renderer.width).
			Render(row)
	}
	return row
}

// renderMessage styles the message column, applying the search
// highlight background to fuzzy-matched rune positions.
func (renderer ListRenderer) renderMessage(message string, width int, base lipgloss.Style, selected bool, matchPositions []int) string {
	if message == "" {
		message = "-"
	}
	runes := []rune(padOrTruncate(message, width))

	if len(matchPositions) == 0 {
		return base.Render(string(runes))
	}

	highlight := base.Background(renderer.theme.SearchHighlightBackground)
	if selected {
		highlight = highlight.Foreground(renderer.theme.SelectedForeground)
	}

	matched := make(map[int]bool, len(matchPositions))
	for _, position := range matchPositions {
		matched[position] = true
	}

	var out strings.Builder
	for index, character := range runes {
		if matched[index] {
			out.WriteString(highlight.Render(string(character)))
		} else {
			out.WriteString(base.Render(string(character)))
		}
	}
	return out.String()
}

// padOrTruncate fits text into exactly width runes, padding with
// spaces or truncating with an ellipsis.
func padOrTruncate(text string, width int) string {
	runes := []rune(text)
	if len(runes) > width {
		if width < 1 {
			return ""
		}
		return string(runes[:width-1]) + "…"
	}
	return text + strings.Repeat(" ", width-len(runes))
}
