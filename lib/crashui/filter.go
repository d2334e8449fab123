// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashui

import (
	"path/filepath"
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/faultline-project/faultline/lib/tui"
)

// FilterModel implements fzf-style fuzzy matching across the fields an
// operator actually greps crashes by: message, executable, kind,
// record name, hostname, and labels. The filter composes with tabs:
// the tab chooses the base set (All/Panics/Traps) and the filter
// narrows it client-side.
type FilterModel struct {
	// Input is the current filter query text.
	Input string

	// Active is true while the filter input has keyboard focus.
	Active bool
}

// FuzzyItem is one record that survived the fuzzy filter, with its
// best score and, when the message was the best-matching field, the
// rune positions to highlight in the list.
type FuzzyItem struct {
	Item             Item
	Score            int
	MessagePositions []int
}

// ApplyFuzzy scores every item against the filter text and returns the
// matches sorted by score, best first. An empty filter returns all
// items with zero scores so callers need no special case. Each item's
// score is the best across its searchable fields; match positions are
// kept only for the message, the one field the list renders in full.
func (filter *FilterModel) ApplyFuzzy(items []Item) []FuzzyItem {
	if filter.Input == "" {
		results := make([]FuzzyItem, len(items))
		for index, item := range items {
			results[index] = FuzzyItem{Item: item}
		}
		return results
	}

	pattern := []rune(filter.Input)
	slab := tui.NewSlab()

	var results []FuzzyItem
	for _, item := range items {
		best := FuzzyItem{Item: item}

		if item.Envelope != nil {
			message := fuzzyMatch(item.Envelope.Message, pattern, slab)
			if message.Score > best.Score {
				best.Score = message.Score
				best.MessagePositions = message.Positions
			}

			for _, field := range []string{
				filepath.Base(item.Envelope.Executable),
				item.Envelope.Kind.String(),
				item.Envelope.Hostname,
			} {
				if result := fuzzyMatch(field, pattern, slab); result.Score > best.Score {
					best.Score = result.Score
					best.MessagePositions = nil
				}
			}
			for key, value := range item.Envelope.Labels {
				if result := fuzzyMatch(key+"="+value, pattern, slab); result.Score > best.Score {
					best.Score = result.Score
					best.MessagePositions = nil
				}
			}
		}

		if result := fuzzyMatch(item.Entry.Name, pattern, slab); result.Score > best.Score {
			best.Score = result.Score
			best.MessagePositions = nil
		}

		if best.Score > 0 {
			results = append(results, best)
		}
	}

	slices.SortStableFunc(results, func(a, b FuzzyItem) int {
		return b.Score - a.Score
	})
	return results
}

// HandleRune appends a typed character to the filter input.
func (filter *FilterModel) HandleRune(character rune) {
	filter.Input += string(character)
}

// HandleBackspace removes the last character from the filter input.
// Returns true if the input changed.
func (filter *FilterModel) HandleBackspace() bool {
	if filter.Input == "" {
		return false
	}
	runes := []rune(filter.Input)
	filter.Input = string(runes[:len(runes)-1])
	return true
}

// Clear resets the filter input and deactivates it.
func (filter *FilterModel) Clear() {
	filter.Input = ""
	filter.Active = false
}

// View renders the filter bar. Active: the input with a cursor.
// Inactive with text: a dim indicator. Inactive and empty: hidden.
func (filter *FilterModel) View(theme Theme, width int) string {
	if !filter.Active && filter.Input == "" {
		return ""
	}

	if filter.Active {
		cursor := lipgloss.NewStyle().
			Foreground(theme.HeaderForeground).
			Bold(true).
			Render("▎")
		return lipgloss.NewStyle().
			Foreground(theme.NormalText).
			Width(width).
			Render(" / " + filter.Input + cursor)
	}

	return lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Width(width).
		Render(" filter: " + filter.Input)
}
