// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

//go:build faultstrip

package fault

// Stripped builds (-tags faultstrip) drop fault messages and source
// locations wholesale: records carry only their kind, diagnostics
// fall back to the kind's fixed text, and none of the formatting code
// (or the strings it would embed in the binary) is compiled in.

func newRecordAt(kind Kind, _ string, _ int) *Record {
	return &Record{kind: kind}
}

func indexMessage(_, _ int) string { return "" }

func sliceMessage(_, _, _ int) string { return "" }

func divideByZeroMessage() string { return "" }

func divideOverflowMessage() string { return "" }

func assertMessage(string) string { return "" }

func unreachableMessage(string) string { return "" }

func raisefMessage(string, ...any) string { return "" }
