// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/faultline-project/faultline/lib/tui"
)

// detailHeaderLines is the fixed number of lines consumed by the
// detail pane header. Constant so the scrollable body never shifts
// vertically when moving between records.
//
// Layout:
//
//	Line 1: KIND  record-name  (sealed)
//	Line 2: captured · host · pid · runtime
//	Line 3: diagnostic line
//	Line 4: executable path
//	Line 5: separator
const detailHeaderLines = 5

// flightTailLines caps how much of the flight recorder tail the body
// shows inline. The full recording is available via the export
// tooling; the pane only needs enough to show what the process was
// doing when it died.
const flightTailLines = 40

// DetailRenderer builds the content for the detail pane: a fixed
// header rendered outside the viewport and a scrollable body set
// into it.
type DetailRenderer struct {
	theme Theme
	width int
}

// NewDetailRenderer creates a DetailRenderer for the given width.
func NewDetailRenderer(theme Theme, width int) DetailRenderer {
	return DetailRenderer{theme: theme, width: width}
}

// RenderHeader produces the fixed header for a crash record, always
// exactly [detailHeaderLines] lines tall regardless of content.
func (renderer DetailRenderer) RenderHeader(item Item) string {
	theme := renderer.theme

	// Line 1: kind badge + record name + sealed marker.
	var line1 string
	kindStyle := lipgloss.NewStyle().Bold(true)
	switch {
	case item.Locked():
		line1 = kindStyle.Foreground(theme.SealedForeground).Render("SEALED")
	case item.Envelope == nil:
		line1 = kindStyle.Foreground(theme.FaintText).Render("UNREADABLE")
	default:
		kind := item.Envelope.Kind.String()
		line1 = kindStyle.Foreground(theme.KindColor(kind)).Render(strings.ToUpper(kind))
	}
	line1 += "  " + lipgloss.NewStyle().Foreground(theme.NormalText).Render(item.Entry.Name)
	if item.Entry.Sealed && item.Envelope != nil {
		line1 += "  " + lipgloss.NewStyle().Foreground(theme.SealedForeground).Render("(sealed)")
	}

	// Line 2: capture identity, condensed.
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	var identity []string
	identity = append(identity, "captured "+item.Entry.CapturedAt.UTC().Format("2006-01-02 15:04:05")+" UTC")
	if item.Envelope != nil {
		if item.Envelope.Hostname != "" {
			identity = append(identity, "host "+item.Envelope.Hostname)
		}
		if item.Envelope.PID != 0 {
			identity = append(identity, fmt.Sprintf("pid %d", item.Envelope.PID))
		}
		if item.Envelope.Runtime != "" {
			identity = append(identity, item.Envelope.Runtime)
		}
	} else if item.Entry.PID != 0 {
		identity = append(identity, fmt.Sprintf("pid %d", item.Entry.PID))
	}
	line2 := faint.Render(strings.Join(identity, " · "))

	// Line 3: the diagnostic line, exactly as the handler printed it.
	var line3 string
	switch {
	case item.Locked():
		line3 = faint.Render("decryption key required")
	case item.Envelope == nil:
		line3 = faint.Render("record could not be decoded")
	default:
		line3 = lipgloss.NewStyle().Foreground(theme.NormalText).Render(item.Envelope.Diagnostic())
	}

	// Line 4: executable path.
	line4 := ""
	if item.Envelope != nil && item.Envelope.Executable != "" {
		line4 = faint.Render(item.Envelope.Executable)
	}

	separator := lipgloss.NewStyle().
		Foreground(theme.BorderColor).
		Width(renderer.width).
		Render(strings.Repeat("─", renderer.width))

	lines := []string{line1, line2, line3, line4, separator}
	for index, line := range lines[:4] {
		lines[index] = ansi.Truncate(line, renderer.width, "…")
	}
	return strings.Join(lines, "\n")
}

// RenderBody produces the scrollable body for a crash record. Section
// order: location, platform, labels, flight recorder tail, notes.
func (renderer DetailRenderer) RenderBody(item Item) string {
	theme := renderer.theme
	var sections []string

	if item.Locked() {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.SealedForeground).
			Render("This record is encrypted. Start the viewer with --key\nto read sealed records."))
		return strings.Join(sections, "\n\n")
	}
	if item.Envelope == nil {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.FaintText).
			Render("This record could not be decoded. The file may be truncated\nor written by an incompatible version."))
		return strings.Join(sections, "\n\n")
	}
	envelope := item.Envelope

	if envelope.File != "" {
		location := envelope.File + ":" + fmt.Sprint(envelope.Line)
		if envelope.Column > 0 {
			location += ":" + fmt.Sprint(envelope.Column)
		}
		sections = append(sections, renderer.section("Location", location))
	} else {
		sections = append(sections, renderer.section("Location",
			lipgloss.NewStyle().Foreground(theme.FaintText).Render("withheld (stripped binary)")))
	}

	platform := []string{}
	if envelope.OS != "" || envelope.Arch != "" {
		platform = append(platform, strings.TrimSuffix(envelope.OS+"/"+envelope.Arch, "/"))
	}
	if envelope.Executable != "" {
		platform = append(platform, filepath.Base(envelope.Executable))
	}
	if len(platform) > 0 {
		sections = append(sections, renderer.section("Platform", strings.Join(platform, "  ")))
	}

	if len(envelope.Labels) > 0 {
		keys := make([]string, 0, len(envelope.Labels))
		for key := range envelope.Labels {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var lines []string
		faint := lipgloss.NewStyle().Foreground(theme.FaintText)
		for _, key := range keys {
			lines = append(lines, faint.Render(key+"=")+envelope.Labels[key])
		}
		sections = append(sections, renderer.section("Labels", strings.Join(lines, "\n")))
	}

	if len(envelope.Flight) > 0 {
		sections = append(sections, renderer.renderFlight(envelope.Flight))
	}

	if item.Note != "" {
		rendered := renderTerminalMarkdown(item.Note, theme, renderer.width)
		sections = append(sections, renderer.section("Notes", rendered))
	}

	return strings.Join(sections, "\n\n")
}

// section renders a titled body section: bold title line, content
// below it.
func (renderer DetailRenderer) section(title, content string) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(renderer.theme.HeaderForeground)
	return titleStyle.Render(title) + "\n" + content
}

// renderFlight renders the tail of the flight recorder as faint plain
// text. Escape sequences are stripped so recorded terminal output
// cannot corrupt the pane.
func (renderer DetailRenderer) renderFlight(flight []byte) string {
	text := strings.TrimRight(ansi.Strip(string(flight)), "\n")
	lines := strings.Split(text, "\n")

	truncated := false
	if len(lines) > flightTailLines {
		lines = lines[len(lines)-flightTailLines:]
		truncated = true
	}

	faint := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)
	for index, line := range lines {
		lines[index] = faint.Render(ansi.Truncate(line, renderer.width, "…"))
	}

	title := fmt.Sprintf("Flight Recorder (%s)", formatByteCount(len(flight)))
	if truncated {
		title += ", tail"
	}
	return renderer.section(title, strings.Join(lines, "\n"))
}

func formatByteCount(count int) string {
	if count < 1024 {
		return fmt.Sprintf("%d B", count)
	}
	return fmt.Sprintf("%.1f KB", float64(count)/1024)
}

// DetailPane owns the right-hand side of the split view: a fixed
// record header and a scrollable body in a viewport, with a scrollbar
// column on the right edge.
type DetailPane struct {
	viewport viewport.Model
	theme    Theme
	width    int
	height   int

	// Retained for re-rendering on resize so word wrap adapts to
	// splitter changes.
	hasItem bool
	item    Item

	// Pre-rendered header string, set by SetItem and rerender.
	header string
}

// NewDetailPane creates an empty detail pane.
func NewDetailPane(theme Theme) DetailPane {
	return DetailPane{theme: theme}
}

// bodyHeight returns the number of lines available to the scrollable
// viewport body.
func (pane DetailPane) bodyHeight() int {
	result := pane.height - detailHeaderLines
	if result < 1 {
		result = 1
	}
	return result
}

// contentWidth returns the usable width for text content (total width
// minus the left padding column and right scrollbar column).
func (pane DetailPane) contentWidth() int {
	return pane.width - 2
}

// SetSize updates the pane dimensions. When the width changed and a
// record is displayed, the content re-renders at the new width so
// wrapping stays correct.
func (pane *DetailPane) SetSize(width, height int) {
	previousWidth := pane.width
	pane.width = width
	pane.height = height
	pane.viewport.Width = pane.contentWidth()
	pane.viewport.Height = pane.bodyHeight()

	if pane.hasItem && width != previousWidth {
		pane.rerender()
	}
}

// SetItem updates the pane with rendered content for a crash record
// and scrolls back to the top.
func (pane *DetailPane) SetItem(item Item) {
	pane.hasItem = true
	pane.item = item
	pane.render()
	pane.viewport.GotoTop()
}

// Clear removes the pane content.
func (pane *DetailPane) Clear() {
	pane.hasItem = false
	pane.item = Item{}
	pane.header = ""
	pane.viewport.SetContent("")
}

func (pane *DetailPane) render() {
	contentWidth := pane.contentWidth()
	renderer := NewDetailRenderer(pane.theme, contentWidth)
	pane.header = renderer.RenderHeader(pane.item)

	// Width-constrain the body so no line exceeds the viewport width;
	// markdown notes can carry long unbroken runs the renderer's
	// word-wrap cannot split.
	body := renderer.RenderBody(pane.item)
	body = lipgloss.NewStyle().Width(contentWidth).Render(body)
	pane.viewport.SetContent(body)
}

// rerender regenerates content at the current width, preserving the
// scroll position as closely as possible.
func (pane *DetailPane) rerender() {
	previousOffset := pane.viewport.YOffset
	pane.render()

	maxOffset := pane.viewport.TotalLineCount() - pane.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if previousOffset > maxOffset {
		previousOffset = maxOffset
	}
	pane.viewport.SetYOffset(previousOffset)
}

// View renders the pane as a docked panel: fixed header, scrollable
// body, left padding, right scrollbar.
func (pane DetailPane) View(focused bool) string {
	if !pane.hasItem {
		emptyStyle := lipgloss.NewStyle().Foreground(pane.theme.FaintText)
		content := lipgloss.NewStyle().
			PaddingLeft(1).
			Width(pane.width - 1).
			Height(pane.height).
			Render(lipgloss.Place(
				pane.contentWidth(), pane.height,
				lipgloss.Center, lipgloss.Center,
				emptyStyle.Render("Select a crash record to view details"),
			))
		scrollbar := tui.RenderScrollbar(pane.theme, pane.height, 0, pane.height, 0, focused)
		return lipgloss.JoinHorizontal(lipgloss.Top, content, scrollbar)
	}

	paddingStyle := lipgloss.NewStyle().
		PaddingLeft(1).
		Width(pane.width - 1)

	headerView := paddingStyle.Height(detailHeaderLines).Render(pane.header)
	bodyView := paddingStyle.Height(pane.bodyHeight()).Render(pane.viewport.View())
	content := headerView + "\n" + bodyView

	// Scrollbar: blank column alongside the header, actual scrollbar
	// alongside the body it scrolls.
	headerColumn := lipgloss.NewStyle().
		Width(1).
		Height(detailHeaderLines).
		Render("")
	bodyScrollbar := tui.RenderScrollbar(
		pane.theme, pane.bodyHeight(),
		pane.viewport.TotalLineCount(), pane.viewport.Height, pane.viewport.YOffset,
		focused,
	)
	scrollColumn := headerColumn + "\n" + bodyScrollbar

	return lipgloss.JoinHorizontal(lipgloss.Top, content, scrollColumn)
}

// ScrollUp scrolls the detail body up by half a page.
func (pane *DetailPane) ScrollUp() {
	pane.viewport.HalfViewUp()
}

// ScrollDown scrolls the detail body down by half a page.
func (pane *DetailPane) ScrollDown() {
	pane.viewport.HalfViewDown()
}
