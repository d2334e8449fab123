// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"sort"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult holds the outcome of matching one pattern against one
// string. A zero Score means no match; Positions are the rune indices
// of the matched characters, ascending.
type FuzzyResult struct {
	Score     int
	Positions []int
}

// NewSlab allocates a scratch slab for [FuzzyMatch]. The matcher
// accepts nil and allocates internally, but callers scoring many
// strings per keystroke should allocate one slab and reuse it.
func NewSlab() *util.Slab {
	// Same slab dimensions fzf itself uses per matcher goroutine.
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyMatch scores pattern against text with fzf's V2 algorithm, the
// same scoring interactive fzf uses: non-contiguous matches allowed,
// bonuses for word boundaries and camelCase humps. Matching is
// case-insensitive; the pattern is lowercased here and the algorithm
// folds the text side.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 || text == "" {
		return FuzzyResult{}
	}

	lowered := make([]rune, len(pattern))
	for index, character := range pattern {
		lowered[index] = unicode.ToLower(character)
	}

	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, false, true, &chars, lowered, true, slab)
	if result.Score <= 0 {
		return FuzzyResult{}
	}

	match := FuzzyResult{Score: result.Score}
	if positions != nil {
		match.Positions = append(match.Positions, *positions...)
		// The algorithm emits positions from the end of the match
		// backwards; callers want them in text order.
		sort.Ints(match.Positions)
	}
	return match
}
