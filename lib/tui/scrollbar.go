// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar draws a one-column scrollbar of the given height. The
// thumb marks the visible slice of the content: proportional in size,
// positioned by scroll offset, never smaller than one row. When the
// content fits entirely the thumb fills the whole track, so panes keep
// a stable right edge instead of a scrollbar that blinks in and out.
// A focused pane gets an accent-colored thumb.
func RenderScrollbar(theme Theme, height, total, visible, offset int, focused bool) string {
	if height <= 0 {
		return ""
	}

	thumbColor := theme.BorderColor
	if focused {
		thumbColor = theme.HeaderForeground
	}
	thumb := lipgloss.NewStyle().Foreground(thumbColor).Render("┃")
	track := lipgloss.NewStyle().Foreground(theme.BorderColor).Render("│")

	thumbStart, thumbEnd := 0, height
	if total > visible && total > 0 && visible > 0 {
		size := height * visible / total
		if size < 1 {
			size = 1
		}
		span := height - size
		scrollable := total - visible
		position := 0
		if span > 0 && scrollable > 0 {
			position = offset * span / scrollable
		}
		if position+size > height {
			position = height - size
		}
		thumbStart, thumbEnd = position, position+size
	}

	lines := make([]string, height)
	for row := range lines {
		if row >= thumbStart && row < thumbEnd {
			lines[row] = thumb
		} else {
			lines[row] = track
		}
	}
	return strings.Join(lines, "\n")
}
