// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the crash viewer.
type KeyMap struct {
	// Navigation, context-sensitive: list movement or detail
	// scrolling depending on which pane has focus.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Focus switching.
	FocusToggle key.Binding

	// Splitter resize.
	SplitGrow   key.Binding // Grow the list pane.
	SplitShrink key.Binding // Shrink the list pane.

	// Tab switching.
	TabAll    key.Binding
	TabPanics key.Binding
	TabTraps  key.Binding

	// Filter.
	FilterActivate key.Binding
	FilterClear    key.Binding

	// Annotate the selected record.
	Annotate key.Binding

	// Reload records from the store.
	Reload key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys and page up/down.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "switch pane"),
	),
	SplitGrow: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "grow list"),
	),
	SplitShrink: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "shrink list"),
	),
	TabAll: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "all"),
	),
	TabPanics: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "panics"),
	),
	TabTraps: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "traps"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear filter"),
	),
	Annotate: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "annotate"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
