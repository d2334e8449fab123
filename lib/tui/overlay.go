// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay replaces a rectangular region of a rendered view with
// overlay content, line by line, starting at (anchorX, anchorY) in
// screen coordinates. Truncation on both sides of the overlay is
// ANSI-aware, so styled content in the underlying view survives with
// its escape sequences intact. Overlay lines that fall outside the
// view are dropped rather than extending it.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for offset, overlayLine := range overlayLines {
		row := anchorY + offset
		if row < 0 || row >= len(viewLines) {
			continue
		}

		original := viewLines[row]
		var spliced strings.Builder
		if anchorX > 0 {
			spliced.WriteString(ansi.Truncate(original, anchorX, ""))
		}
		// Reset around the overlay so neither side's styling leaks
		// into the other.
		spliced.WriteString("\x1b[0m")
		spliced.WriteString(overlayLine)
		spliced.WriteString("\x1b[0m")

		tailStart := anchorX + overlayWidth
		if tailStart < ansi.StringWidth(original) {
			spliced.WriteString(ansi.TruncateLeft(original, tailStart, ""))
		}

		viewLines[row] = spliced.String()
	}

	return strings.Join(viewLines, "\n")
}
