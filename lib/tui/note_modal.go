// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// NoteModal is a centered overlay with a multi-line text editor, used
// for free-form annotations. It implements its own rune-level editing
// (insert, delete, line split/merge, cursor movement) rather than
// pulling in a full textarea widget; the editing surface is small and
// the overlay rendering needs precise control of every line anyway.
type NoteModal struct {
	// Subject identifies what the note will be attached to, shown in
	// the modal title.
	Subject string

	lines   [][]rune
	cursorY int
	cursorX int
	theme   Theme
}

// NewNoteModal creates an empty, focused text modal for the subject.
func NewNoteModal(subject string, theme Theme) NoteModal {
	return NoteModal{
		Subject: subject,
		lines:   [][]rune{{}},
		theme:   theme,
	}
}

// Value returns the text entered so far, lines joined with newlines.
func (modal NoteModal) Value() string {
	parts := make([]string, len(modal.lines))
	for index, line := range modal.lines {
		parts[index] = string(line)
	}
	return strings.Join(parts, "\n")
}

// Update processes a key message for the modal's editor. Submission
// and dismissal keys (Ctrl+D, Esc) are the caller's concern; this
// method only edits text and moves the cursor.
func (modal *NoteModal) Update(message tea.KeyMsg) {
	switch message.Type {
	case tea.KeyRunes, tea.KeySpace:
		for _, character := range message.Runes {
			line := modal.lines[modal.cursorY]
			modal.lines[modal.cursorY] = slices.Insert(line, modal.cursorX, character)
			modal.cursorX++
		}

	case tea.KeyEnter:
		line := modal.lines[modal.cursorY]
		tail := slices.Clone(line[modal.cursorX:])
		modal.lines[modal.cursorY] = line[:modal.cursorX]
		modal.lines = slices.Insert(modal.lines, modal.cursorY+1, tail)
		modal.cursorY++
		modal.cursorX = 0

	case tea.KeyBackspace:
		if modal.cursorX > 0 {
			line := modal.lines[modal.cursorY]
			modal.lines[modal.cursorY] = slices.Delete(line, modal.cursorX-1, modal.cursorX)
			modal.cursorX--
		} else if modal.cursorY > 0 {
			previous := modal.lines[modal.cursorY-1]
			modal.cursorX = len(previous)
			modal.lines[modal.cursorY-1] = append(previous, modal.lines[modal.cursorY]...)
			modal.lines = slices.Delete(modal.lines, modal.cursorY, modal.cursorY+1)
			modal.cursorY--
		}

	case tea.KeyDelete:
		line := modal.lines[modal.cursorY]
		if modal.cursorX < len(line) {
			modal.lines[modal.cursorY] = slices.Delete(line, modal.cursorX, modal.cursorX+1)
		} else if modal.cursorY < len(modal.lines)-1 {
			modal.lines[modal.cursorY] = append(line, modal.lines[modal.cursorY+1]...)
			modal.lines = slices.Delete(modal.lines, modal.cursorY+1, modal.cursorY+2)
		}

	case tea.KeyLeft:
		if modal.cursorX > 0 {
			modal.cursorX--
		} else if modal.cursorY > 0 {
			modal.cursorY--
			modal.cursorX = len(modal.lines[modal.cursorY])
		}

	case tea.KeyRight:
		if modal.cursorX < len(modal.lines[modal.cursorY]) {
			modal.cursorX++
		} else if modal.cursorY < len(modal.lines)-1 {
			modal.cursorY++
			modal.cursorX = 0
		}

	case tea.KeyUp:
		if modal.cursorY > 0 {
			modal.cursorY--
			modal.clampCursorX()
		}

	case tea.KeyDown:
		if modal.cursorY < len(modal.lines)-1 {
			modal.cursorY++
			modal.clampCursorX()
		}

	case tea.KeyHome, tea.KeyCtrlA:
		modal.cursorX = 0

	case tea.KeyEnd, tea.KeyCtrlE:
		modal.cursorX = len(modal.lines[modal.cursorY])
	}
}

func (modal *NoteModal) clampCursorX() {
	if modal.cursorX > len(modal.lines[modal.cursorY]) {
		modal.cursorX = len(modal.lines[modal.cursorY])
	}
}

// Modal chrome overhead: border (2) plus padding (2) horizontally;
// border (2), title (1), and footer (1) vertically.
const (
	noteModalChromeWidth  = 4
	noteModalChromeHeight = 4

	// Below this inner size the editor is too cramped to use.
	noteModalMinInnerWidth  = 30
	noteModalMinInnerHeight = 5

	// Gap between the modal and the screen edge, collapsed to zero on
	// tiny terminals.
	noteModalMargin = 2
)

// Render produces the modal overlay lines plus the top-left anchor for
// [SpliceOverlay]. The modal fills the screen minus a margin, shrinking
// the margin before the editor area when space runs out.
func (modal NoteModal) Render(screenWidth, screenHeight int) ([]string, int, int) {
	modalWidth := screenWidth - noteModalMargin*2
	modalHeight := screenHeight - noteModalMargin*2
	modalWidth = max(modalWidth, noteModalMinInnerWidth+noteModalChromeWidth)
	modalHeight = max(modalHeight, noteModalMinInnerHeight+noteModalChromeHeight)
	modalWidth = min(modalWidth, screenWidth)
	modalHeight = min(modalHeight, screenHeight)

	innerWidth := modalWidth - noteModalChromeWidth
	innerHeight := modalHeight - noteModalChromeHeight

	background := lipgloss.NewStyle().Background(modal.theme.ModalBackground)
	text := background.Foreground(modal.theme.ModalForeground)
	cursor := lipgloss.NewStyle().Reverse(true)

	pad := func(rendered string) string {
		width := ansi.StringWidth(rendered)
		if width < innerWidth {
			rendered += background.Render(strings.Repeat(" ", innerWidth-width))
		}
		return rendered
	}

	title := pad(background.Foreground(modal.theme.HeaderForeground).Bold(true).
		Render("Annotate " + modal.Subject))
	footer := pad(background.Foreground(modal.theme.FaintText).
		Render("Ctrl+D save  Esc cancel"))

	// Scroll the editor window so the cursor line stays visible.
	top := 0
	if modal.cursorY >= innerHeight {
		top = modal.cursorY - innerHeight + 1
	}

	body := make([]string, 0, innerHeight)
	for row := top; row < top+innerHeight; row++ {
		var rendered string
		switch {
		case row >= len(modal.lines):
			// Past the end of the text: blank editor row.
		case row != modal.cursorY:
			rendered = text.Render(string(modal.lines[row]))
		case modal.cursorX >= len(modal.lines[row]):
			rendered = text.Render(string(modal.lines[row])) + cursor.Render(" ")
		default:
			line := modal.lines[row]
			rendered = text.Render(string(line[:modal.cursorX])) +
				cursor.Render(string(line[modal.cursorX:modal.cursorX+1])) +
				text.Render(string(line[modal.cursorX+1:]))
		}
		body = append(body, pad(rendered))
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modal.theme.BorderColor).
		Background(modal.theme.ModalBackground)

	inner := title + "\n" + strings.Join(body, "\n") + "\n" + footer
	overlayLines := strings.Split(border.Render(inner), "\n")

	renderedWidth := 0
	if len(overlayLines) > 0 {
		renderedWidth = ansi.StringWidth(overlayLines[0])
	}
	anchorX := max((screenWidth-renderedWidth)/2, 0)
	anchorY := max((screenHeight-len(overlayLines))/2, 0)
	return overlayLines, anchorX, anchorY
}
