// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package fault

import (
	"errors"
	"strconv"
)

// Kind classifies the site that raised a fault. It is the only field
// of a Record that survives a stripped build (the faultstrip tag), so
// handlers and tooling can always tell bounds violations from explicit
// panics even when messages and locations are gone.
type Kind uint8

const (
	// KindPanic is an explicit fault requested by code via Raise or
	// Raisef.
	KindPanic Kind = iota + 1

	// KindIndex is an index bounds violation detected by Index.
	KindIndex

	// KindSlice is a slice bounds violation detected by Slice.
	KindSlice

	// KindDivide is an arithmetic fault detected by Quotient or
	// Remainder: division by zero, or quotient overflow.
	KindDivide

	// KindAssert is a failed invariant check from Assert or Assertf.
	KindAssert

	// KindUnreachable marks control flow that was declared impossible
	// via Unreachable.
	KindUnreachable
)

// String returns the short lowercase name of the kind, stable for use
// in crash records and index queries.
func (k Kind) String() string {
	switch k {
	case KindPanic:
		return "panic"
	case KindIndex:
		return "index"
	case KindSlice:
		return "slice"
	case KindDivide:
		return "divide"
	case KindAssert:
		return "assert"
	case KindUnreachable:
		return "unreachable"
	default:
		return "fault"
	}
}

// ParseKind converts a kind name produced by [Kind.String] back into
// a Kind. Used by tooling that filters crash records by kind.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "panic":
		return KindPanic, true
	case "index":
		return KindIndex, true
	case "slice":
		return KindSlice, true
	case "divide":
		return KindDivide, true
	case "assert":
		return KindAssert, true
	case "unreachable":
		return KindUnreachable, true
	default:
		return 0, false
	}
}

// MarshalText implements encoding.TextMarshaler so serialized crash
// records store the kind by name rather than by numeric value.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return errors.New("unknown fault kind " + strconv.Quote(string(text)))
	}
	*k = parsed
	return nil
}

// fallbackMessage is the diagnostic text used when a record carries no
// message, either because the raise site supplied none or because the
// build was stripped.
func (k Kind) fallbackMessage() string {
	switch k {
	case KindPanic:
		return "explicit panic"
	case KindIndex:
		return "index out of bounds"
	case KindSlice:
		return "slice bounds out of range"
	case KindDivide:
		return "attempt to divide by zero"
	case KindAssert:
		return "assertion failed"
	case KindUnreachable:
		return "internal error: entered unreachable code"
	default:
		return "fault"
	}
}

// Record describes one fatal fault. Records are immutable: all fields
// are set at construction and exposed through accessors only, so the
// message and location a handler observes are exactly what the raise
// site supplied.
//
// The message and the source location are both optional. A zero
// column means the column is unknown; raise sites in Go code never
// know their column (the runtime reports file and line only), but
// records built by code generators or non-Go frontends may carry one.
type Record struct {
	kind    Kind
	message string
	file    string
	line    int
	column  int
}

// NewRecord builds a record from explicit parts. The raise helpers in
// this package construct records automatically; NewRecord exists for
// decoders, tooling, and frontends that capture fault state from
// somewhere else.
func NewRecord(kind Kind, message, file string, line, column int) *Record {
	return &Record{
		kind:    kind,
		message: message,
		file:    file,
		line:    line,
		column:  column,
	}
}

// Kind returns the fault classification.
func (r *Record) Kind() Kind { return r.kind }

// Message returns the message supplied at the raise site, or "" when
// no message was supplied (or the build was stripped).
func (r *Record) Message() string { return r.message }

// File returns the source file of the raise site, or "" when the
// location is unknown.
func (r *Record) File() string { return r.file }

// Line returns the source line of the raise site. Meaningless when
// File returns "".
func (r *Record) Line() int { return r.line }

// Column returns the source column of the raise site, or 0 when the
// column is unknown.
func (r *Record) Column() int { return r.column }

// HasLocation reports whether the record carries a source location.
func (r *Record) HasLocation() bool { return r.file != "" }

// AppendDiagnostic appends the single-line diagnostic form of the
// record to dst and returns the extended slice:
//
//	panicked at 'index out of bounds: the len is 3 but the index is 4', boot.go:17
//
// The location clause is omitted when the record has none; the column
// (and its separating colon) is omitted when unknown. The method
// performs no allocation beyond growing dst, so handlers can render
// into a stack buffer before the heap is known to be usable.
func (r *Record) AppendDiagnostic(dst []byte) []byte {
	dst = append(dst, "panicked at '"...)
	if r.message != "" {
		dst = append(dst, r.message...)
	} else {
		dst = append(dst, r.kind.fallbackMessage()...)
	}
	dst = append(dst, '\'')
	if r.file != "" {
		dst = append(dst, ", "...)
		dst = append(dst, r.file...)
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, int64(r.line), 10)
		if r.column > 0 {
			dst = append(dst, ':')
			dst = strconv.AppendInt(dst, int64(r.column), 10)
		}
	}
	return dst
}

// Diagnostic returns the single-line diagnostic form of the record.
func (r *Record) Diagnostic() string {
	return string(r.AppendDiagnostic(nil))
}

// String returns the diagnostic form, satisfying fmt.Stringer.
func (r *Record) String() string {
	return r.Diagnostic()
}
