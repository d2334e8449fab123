// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/lib/tui"
)

// Tab identifies which subset of the crash store is displayed.
type Tab int

const (
	// TabAll shows every record, including sealed and unreadable ones.
	TabAll Tab = iota
	// TabPanics shows explicit faults: panic, assert, unreachable.
	TabPanics
	// TabTraps shows runtime-detected faults: index, slice, divide.
	TabTraps
)

// FocusRegion identifies which pane has keyboard focus.
type FocusRegion int

const (
	// FocusList means navigation keys move the record list cursor.
	FocusList FocusRegion = iota
	// FocusDetail means navigation keys scroll the detail viewport.
	FocusDetail
	// FocusFilter means keystrokes go to the filter input.
	FocusFilter
	// FocusNoteModal means the annotation modal is active and all
	// keyboard input routes to it. Ctrl+D submits, Escape cancels.
	FocusNoteModal
)

// Split ratio bounds and step size.
const (
	splitRatioMin  = 0.20
	splitRatioMax  = 0.80
	splitRatioStep = 0.05
)

// errorFadeDelay is how long a load or annotate error stays visible in
// the help bar.
const errorFadeDelay = 4 * time.Second

// reloadDoneMsg carries the result of an asynchronous store load.
type reloadDoneMsg struct {
	snapshot Snapshot
	err      error
}

// mutationResultMsg is sent when an asynchronous annotate call
// completes. On success the model reloads so the note marker appears.
type mutationResultMsg struct {
	err error
}

// errorFadeMsg is sent after a delay to clear the error notice from
// the help bar.
type errorFadeMsg struct{}

// Model is the top-level bubbletea model for the crash store viewer.
type Model struct {
	source Source
	theme  Theme
	keys   KeyMap

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	// loaded flips on the first successful snapshot; before that the
	// empty state reads "loading" rather than "no records".
	loaded bool

	// Active tab and filter.
	activeTab Tab
	filter    FilterModel

	// List state. all is the full snapshot, newest first; items is the
	// displayed subset after tab and filter selection.
	all      []Item
	items    []Item
	storeDir string
	cursor   int
	// scrollOffset is the index of the first visible list row.
	scrollOffset int
	selectedName string // Stable focus: track selection by record name.

	// Two-pane layout.
	focusRegion FocusRegion
	priorFocus  FocusRegion // Saved focus when entering filter mode.
	splitRatio  float64     // Fraction of width for the list pane.
	detailPane  DetailPane  // Right pane: scrollable record detail.

	// Annotation modal. Non-nil while the user is typing a note.
	noteModal *tui.NoteModal

	// statusError is briefly displayed in the help bar after a failed
	// load or annotate.
	statusError string

	// Filter match highlighting: maps record name to matched rune
	// positions in the message column. Nil when no filter is active.
	filterHighlights map[string][]int
}

// NewModel creates a Model connected to the given crash record source.
// The first snapshot loads asynchronously from Init, so construction
// never touches the filesystem.
func NewModel(source Source) Model {
	return Model{
		source:     source,
		theme:      DefaultTheme,
		keys:       DefaultKeyMap,
		activeTab:  TabAll,
		splitRatio: 0.50,
		detailPane: NewDetailPane(DefaultTheme),
	}
}

// Init implements tea.Model. Kicks off the initial store load.
func (model Model) Init() tea.Cmd {
	return model.reloadCmd()
}

// reloadCmd returns a tea.Cmd that loads a fresh snapshot from the
// source off the event loop.
func (model Model) reloadCmd() tea.Cmd {
	source := model.source
	return func() tea.Msg {
		snapshot, err := source.Load()
		return reloadDoneMsg{snapshot: snapshot, err: err}
	}
}

// Update implements tea.Model. Routes keyboard events based on the
// current focus region and handles layout changes.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		// When filter is active, route all input to the filter first,
		// except for Esc (clear) and Enter (confirm and return).
		if model.focusRegion == FocusFilter {
			return model.handleFilterKeys(message)
		}
		// When the annotation modal is active, route all input to it.
		if model.focusRegion == FocusNoteModal {
			return model.handleNoteModalKeys(message)
		}

		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit

		case key.Matches(message, model.keys.FocusToggle):
			if model.focusRegion == FocusList {
				model.focusRegion = FocusDetail
			} else {
				model.focusRegion = FocusList
			}

		case key.Matches(message, model.keys.SplitGrow):
			model.splitRatio += splitRatioStep
			if model.splitRatio > splitRatioMax {
				model.splitRatio = splitRatioMax
			}
			model.updatePaneSizes()

		case key.Matches(message, model.keys.SplitShrink):
			model.splitRatio -= splitRatioStep
			if model.splitRatio < splitRatioMin {
				model.splitRatio = splitRatioMin
			}
			model.updatePaneSizes()

		case key.Matches(message, model.keys.TabAll):
			model.switchTab(TabAll)

		case key.Matches(message, model.keys.TabPanics):
			model.switchTab(TabPanics)

		case key.Matches(message, model.keys.TabTraps):
			model.switchTab(TabTraps)

		case key.Matches(message, model.keys.FilterActivate):
			model.priorFocus = model.focusRegion
			model.focusRegion = FocusFilter
			model.filter.Active = true
			// Reset list position to the top so the user sees results
			// from the beginning as they type.
			model.cursor = 0
			model.scrollOffset = 0

		case key.Matches(message, model.keys.FilterClear):
			if model.filter.Input != "" {
				model.filter.Clear()
				model.rebuildItems()
				model.restoreSelection()
				model.ensureCursorVisible()
				model.syncDetailPane()
			}

		case key.Matches(message, model.keys.Annotate):
			model.openNoteModal()

		case key.Matches(message, model.keys.Reload):
			return model, model.reloadCmd()

		default:
			if model.focusRegion == FocusList {
				model.handleListKeys(message)
			} else {
				model.handleDetailKeys(message)
			}
		}

	case tea.MouseMsg:
		model.handleMouse(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.updatePaneSizes()
		model.syncDetailPane()

	case reloadDoneMsg:
		if message.err != nil {
			model.statusError = message.err.Error()
			return model, scheduleErrorFade()
		}
		model.loaded = true
		model.all = message.snapshot.Items
		model.storeDir = message.snapshot.Dir
		model.rebuildItems()
		model.restoreSelection()
		model.ensureCursorVisible()
		model.syncDetailPane()

	case mutationResultMsg:
		if message.err != nil {
			model.statusError = message.err.Error()
			return model, scheduleErrorFade()
		}
		// Reload so the note marker and detail section appear.
		return model, model.reloadCmd()

	case errorFadeMsg:
		model.statusError = ""
	}
	return model, nil
}

// scheduleErrorFade returns a tea.Cmd that clears the error notice
// after a delay.
func scheduleErrorFade() tea.Cmd {
	return tea.Tick(errorFadeDelay, func(time.Time) tea.Msg {
		return errorFadeMsg{}
	})
}

// contentStartY returns the Y coordinate where the content area
// begins. The top chrome line is always exactly 1 row: either the tab
// bar (normal) or the filter bar (when filter is active). The filter
// bar replaces the tab bar rather than pushing content down.
func (model Model) contentStartY() int {
	return 1
}

// visibleHeight returns the number of list rows that fit between the
// chrome elements: contentStartY above, bottom separator and help bar
// below.
func (model Model) visibleHeight() int {
	return model.height - model.contentStartY() - 2
}

// listWidth returns the width of the list pane in columns.
func (model Model) listWidth() int {
	return int(float64(model.width) * model.splitRatio)
}

// updatePaneSizes recalculates pane dimensions after a resize or
// split ratio change.
func (model *Model) updatePaneSizes() {
	detailWidth := model.width - model.listWidth() - 1
	if detailWidth < 10 {
		detailWidth = 10
	}
	model.detailPane.SetSize(detailWidth, model.visibleHeight())
}

// matchesTab reports whether an item belongs on the given tab. Records
// without a decoded envelope (sealed without key, or corrupt) only
// appear on the All tab: their kind is unknown.
func matchesTab(item Item, tab Tab) bool {
	if tab == TabAll {
		return true
	}
	if item.Envelope == nil {
		return false
	}
	switch item.Envelope.Kind {
	case fault.KindPanic, fault.KindAssert, fault.KindUnreachable:
		return tab == TabPanics
	case fault.KindIndex, fault.KindSlice, fault.KindDivide:
		return tab == TabTraps
	default:
		return false
	}
}

// rebuildItems recomputes the displayed item list from the full
// snapshot: tab selection first, then the fuzzy filter.
func (model *Model) rebuildItems() {
	var visible []Item
	for _, item := range model.all {
		if matchesTab(item, model.activeTab) {
			visible = append(visible, item)
		}
	}

	if model.filter.Input != "" {
		results := model.filter.ApplyFuzzy(visible)
		model.items = make([]Item, len(results))
		model.filterHighlights = make(map[string][]int, len(results))
		for index, result := range results {
			model.items[index] = result.Item
			if len(result.MessagePositions) > 0 {
				model.filterHighlights[result.Item.Entry.Name] = result.MessagePositions
			}
		}
	} else {
		model.items = visible
		model.filterHighlights = nil
	}
}

// switchTab changes the active tab, clearing any filter.
func (model *Model) switchTab(tab Tab) {
	if model.activeTab == tab {
		return
	}
	model.activeTab = tab
	model.filter.Clear()
	model.rebuildItems()
	model.restoreSelection()
	model.ensureCursorVisible()
	model.syncDetailPane()
}

// restoreSelection attempts to find the previously selected record in
// the rebuilt item list and move the cursor there. If not found,
// clamps the cursor to a valid position.
func (model *Model) restoreSelection() {
	if model.selectedName != "" {
		for index, item := range model.items {
			if item.Entry.Name == model.selectedName {
				model.cursor = index
				return
			}
		}
	}
	model.cursor = model.clampedIndex(model.cursor)
}

// clampedIndex returns position clamped to valid item bounds.
func (model *Model) clampedIndex(position int) int {
	if len(model.items) == 0 {
		return 0
	}
	if position < 0 {
		return 0
	}
	if position >= len(model.items) {
		return len(model.items) - 1
	}
	return position
}

// ensureCursorVisible adjusts scrollOffset so the cursor is within the
// visible window.
func (model *Model) ensureCursorVisible() {
	visible := model.visibleHeight()
	if visible <= 0 {
		return
	}

	// Clamp scrollOffset so we never scroll past the end of the list.
	// This handles tab switches where the new list is shorter than the
	// old offset.
	maxOffset := len(model.items) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if model.scrollOffset > maxOffset {
		model.scrollOffset = maxOffset
	}

	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+visible {
		model.scrollOffset = model.cursor - visible + 1
	}
}

// syncDetailPane updates the detail pane to reflect the currently
// selected record.
func (model *Model) syncDetailPane() {
	if model.cursor < 0 || model.cursor >= len(model.items) {
		model.detailPane.Clear()
		return
	}
	item := model.items[model.cursor]
	model.selectedName = item.Entry.Name
	model.detailPane.SetItem(item)
}

// handleFilterKeys processes keystrokes while the filter input has
// focus.
func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		// ctrl+c always quits, even in filter mode.
		if message.Type == tea.KeyCtrlC {
			return model, tea.Quit
		}
		// 'q' is a regular character in filter mode.
		model.filter.HandleRune('q')
		model.applyFilter()
		return model, nil

	case key.Matches(message, model.keys.FilterClear):
		// Esc: if there's filter text, clear it; if already empty,
		// exit filter mode.
		if model.filter.Input != "" {
			model.filter.Clear()
			model.applyFilter()
		} else {
			model.filter.Active = false
			model.focusRegion = model.priorFocus
		}
		return model, nil

	case message.Type == tea.KeyEnter:
		// Confirm filter and return focus to the list.
		model.filter.Active = false
		model.focusRegion = FocusList
		return model, nil

	case message.Type == tea.KeyBackspace:
		if model.filter.HandleBackspace() {
			model.applyFilter()
		}
		return model, nil

	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		for _, r := range message.Runes {
			model.filter.HandleRune(r)
		}
		model.applyFilter()
		return model, nil
	}

	return model, nil
}

// applyFilter re-filters the snapshot as the user types, snapping the
// cursor to the top so the highest-scored matches are visible.
func (model *Model) applyFilter() {
	model.rebuildItems()

	if model.filter.Input != "" {
		model.cursor = 0
		model.scrollOffset = 0
		if len(model.items) > 0 {
			model.selectedName = model.items[0].Entry.Name
		}
	} else {
		model.restoreSelection()
	}
	model.ensureCursorVisible()
	model.syncDetailPane()
}

// handleListKeys processes navigation keys when the list has focus.
func (model *Model) handleListKeys(message tea.KeyMsg) {
	prevCursor := model.cursor

	switch {
	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.items)-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.PageUp):
		model.cursor = model.clampedIndex(model.cursor - model.visibleHeight())

	case key.Matches(message, model.keys.PageDown):
		model.cursor = model.clampedIndex(model.cursor + model.visibleHeight())

	case key.Matches(message, model.keys.Home):
		model.cursor = 0

	case key.Matches(message, model.keys.End):
		if len(model.items) > 0 {
			model.cursor = len(model.items) - 1
		}
	}

	model.ensureCursorVisible()

	if model.cursor != prevCursor {
		model.syncDetailPane()
	}
}

// handleDetailKeys processes navigation keys when the detail pane has
// focus.
func (model *Model) handleDetailKeys(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.Up):
		model.detailPane.viewport.LineUp(1)
	case key.Matches(message, model.keys.Down):
		model.detailPane.viewport.LineDown(1)
	case key.Matches(message, model.keys.PageUp):
		model.detailPane.ScrollUp()
	case key.Matches(message, model.keys.PageDown):
		model.detailPane.ScrollDown()
	case key.Matches(message, model.keys.Home):
		model.detailPane.viewport.GotoTop()
	case key.Matches(message, model.keys.End):
		model.detailPane.viewport.GotoBottom()
	}
}

// openNoteModal opens the annotation modal for the currently selected
// record. Does nothing when no record is selected.
func (model *Model) openNoteModal() {
	if model.cursor < 0 || model.cursor >= len(model.items) {
		return
	}
	modal := tui.NewNoteModal(model.items[model.cursor].Entry.Name, model.theme)
	model.noteModal = &modal
	model.priorFocus = model.focusRegion
	model.focusRegion = FocusNoteModal
}

// handleNoteModalKeys processes keyboard input while the annotation
// modal is active. Ctrl+D submits, Escape cancels, everything else
// goes to the editor.
func (model Model) handleNoteModalKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.noteModal == nil {
		model.focusRegion = FocusList
		return model, nil
	}

	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case message.Type == tea.KeyEsc:
		model.noteModal = nil
		model.focusRegion = model.priorFocus
		return model, nil

	case message.Type == tea.KeyCtrlD:
		text := strings.TrimSpace(model.noteModal.Value())
		name := model.noteModal.Subject
		model.noteModal = nil
		model.focusRegion = model.priorFocus

		if text == "" {
			return model, nil
		}

		source := model.source
		return model, func() tea.Msg {
			return mutationResultMsg{err: source.Annotate(name, text)}
		}

	default:
		model.noteModal.Update(message)
		return model, nil
	}
}

// handleMouse supports wheel scrolling over either pane and clicking a
// list row to select it.
func (model *Model) handleMouse(message tea.MouseMsg) {
	contentStart := model.contentStartY()
	listWidth := model.listWidth()
	inContentArea := message.Y >= contentStart && message.Y < model.height-2
	inListPane := message.X < listWidth

	switch message.Button {
	case tea.MouseButtonWheelUp:
		if !inContentArea {
			return
		}
		if inListPane {
			model.scrollOffset = max(model.scrollOffset-3, 0)
		} else {
			model.detailPane.viewport.LineUp(3)
		}

	case tea.MouseButtonWheelDown:
		if !inContentArea {
			return
		}
		if inListPane {
			maxOffset := max(len(model.items)-model.visibleHeight(), 0)
			model.scrollOffset = min(model.scrollOffset+3, maxOffset)
		} else {
			model.detailPane.viewport.LineDown(3)
		}

	case tea.MouseButtonLeft:
		if message.Action != tea.MouseActionPress || !inContentArea {
			return
		}
		if inListPane {
			index := model.scrollOffset + message.Y - contentStart
			if index >= 0 && index < len(model.items) {
				model.cursor = index
				model.focusRegion = FocusList
				model.syncDetailPane()
			}
		} else {
			model.focusRegion = FocusDetail
		}
	}
}

// View implements tea.Model. Renders the full frame: chrome line,
// two-pane content area, separator, help bar.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	if len(model.items) == 0 && model.filter.Input == "" {
		return model.renderEmpty()
	}

	var sections []string

	// Top chrome line: either the tab bar or the filter bar. The
	// filter bar replaces the tab bar so the layout doesn't shift.
	filterView := model.filter.View(model.theme, model.width)
	if filterView != "" {
		sections = append(sections, filterView)
	} else {
		sections = append(sections, model.renderHeader())
	}

	// Two-pane content area with vertical divider.
	listView := model.renderListPane()
	divider := model.renderDivider()
	detailView := model.detailPane.View(model.focusRegion == FocusDetail)
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, listView, divider, detailView))

	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width))
	sections = append(sections, separator)

	sections = append(sections, model.renderHelp())

	output := strings.Join(sections, "\n")

	if model.noteModal != nil {
		modalLines, anchorX, anchorY := model.noteModal.Render(model.width, model.height)
		output = tui.SpliceOverlay(output, modalLines, anchorX, anchorY)
	}

	return output
}

// renderEmpty renders the empty state: loading on startup, otherwise
// an invitation to go crash something.
func (model Model) renderEmpty() string {
	text := "Loading crash records..."
	if model.loaded {
		text = "No crash records in " + model.storeDir
	}
	messageStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	return lipgloss.Place(
		model.width, model.height,
		lipgloss.Center, lipgloss.Center,
		messageStyle.Render(text),
	)
}

// tabDefs is the fixed list of tab definitions for the header line.
var tabDefs = []struct {
	label string
	tab   Tab
}{
	{"1:All", TabAll},
	{"2:Panics", TabPanics},
	{"3:Traps", TabTraps},
}

// renderHeader renders the combined tab bar + separator as a single
// line in the btop style: tab labels embedded in a horizontal rule
// with stats on the right.
//
// Example: ─── 1:All ─── 2:Panics ─── 3:Traps ─── 12 shown  3 sealed ─
func (model Model) renderHeader() string {
	separatorStyle := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor)
	activeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(model.theme.HeaderForeground)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(model.theme.FaintText)
	statsStyle := lipgloss.NewStyle().
		Foreground(model.theme.FaintText)

	sep := separatorStyle.Render("─")

	// Build the left portion: ─── Label ─── Label ─── Label ─
	leftParts := sep + sep + sep
	cursor := 3

	for index, tabDef := range tabDefs {
		leftParts += " "
		cursor++

		if model.activeTab == tabDef.tab {
			leftParts += activeStyle.Render(tabDef.label)
		} else {
			leftParts += inactiveStyle.Render(tabDef.label)
		}
		cursor += lipgloss.Width(tabDef.label)

		leftParts += " "
		cursor++

		sepCount := 3
		if index == len(tabDefs)-1 {
			sepCount = 1
		}
		for range sepCount {
			leftParts += sep
			cursor++
		}
	}

	// Stats on the right.
	sealed := 0
	for _, item := range model.all {
		if item.Entry.Sealed {
			sealed++
		}
	}
	statsText := fmt.Sprintf("%d shown  %d total  %d sealed",
		len(model.items), len(model.all), sealed)
	statsRendered := statsStyle.Render(statsText)
	statsWidth := lipgloss.Width(statsText)

	// Fill the gap between tabs and stats with separator chars,
	// leaving 1 space on each side of the stats.
	rightPortion := " " + statsRendered + " " + sep
	rightWidth := 1 + statsWidth + 1 + 1

	fillCount := model.width - cursor - rightWidth
	if fillCount < 1 {
		fillCount = 1
	}
	fill := ""
	for range fillCount {
		fill += sep
	}

	return leftParts + fill + rightPortion
}

// renderListPane renders the record list with a right scrollbar.
func (model Model) renderListPane() string {
	listWidth := model.listWidth()

	// Reserve 1 column for the scrollbar so content stays at a fixed
	// position regardless of scroll state.
	focused := model.focusRegion == FocusList
	rowWidth := listWidth - 1

	renderer := NewListRenderer(model.theme, rowWidth)

	visible := model.visibleHeight()
	if visible < 0 {
		visible = 0
	}

	var rows []string
	for index := model.scrollOffset; index < model.scrollOffset+visible && index < len(model.items); index++ {
		item := model.items[index]
		rows = append(rows, renderer.RenderRow(
			item, index == model.cursor, model.filterHighlights[item.Entry.Name]))
	}

	// Pad empty rows.
	rendered := len(rows)
	if rendered < visible {
		emptyStyle := lipgloss.NewStyle().Width(rowWidth)
		for padding := rendered; padding < visible; padding++ {
			rows = append(rows, emptyStyle.Render(""))
		}
	}

	scrollbar := tui.RenderScrollbar(
		model.theme, visible,
		len(model.items), visible, model.scrollOffset,
		focused,
	)

	contentStyle := lipgloss.NewStyle().
		Width(rowWidth).
		Height(visible)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		contentStyle.Render(strings.Join(rows, "\n")),
		scrollbar,
	)
}

// renderDivider renders the single-column vertical divider between the
// list and detail panes.
func (model Model) renderDivider() string {
	visible := model.visibleHeight()
	if visible < 0 {
		visible = 0
	}

	dividerStyle := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor)

	lines := make([]string, visible)
	for index := range lines {
		lines[index] = "│"
	}

	return dividerStyle.Width(1).Height(visible).Render(strings.Join(lines, "\n"))
}

// renderHelp renders the bottom help bar with key hints and position.
func (model Model) renderHelp() string {
	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)

	focusIndicator := "LIST"
	switch model.focusRegion {
	case FocusDetail:
		focusIndicator = "DETAIL"
	case FocusFilter:
		focusIndicator = "FILTER"
	case FocusNoteModal:
		focusIndicator = "NOTE"
	}

	help := fmt.Sprintf(" [%s] q quit  ↑↓ navigate  Tab focus  ]/[ resize  1/2/3 tabs  / filter  a annotate  r reload",
		focusIndicator)

	if len(model.items) > model.visibleHeight() {
		position := ""
		if model.scrollOffset == 0 {
			position = "top"
		} else if model.scrollOffset+model.visibleHeight() >= len(model.items) {
			position = "bottom"
		} else {
			percent := float64(model.scrollOffset) / float64(len(model.items)-model.visibleHeight()) * 100
			position = fmt.Sprintf("%d%%", int(percent))
		}
		help += fmt.Sprintf("  [%s] %d/%d", position, model.cursor+1, len(model.items))
	} else if len(model.items) > 0 {
		help += fmt.Sprintf("  %d/%d", model.cursor+1, len(model.items))
	}

	if model.statusError != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(model.theme.KindColor("panic")).
			Bold(true)
		help += "  " + errorStyle.Render("Error: "+model.statusError)
	}

	return style.Render(help)
}
