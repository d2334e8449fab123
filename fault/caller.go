// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !faultstrip

package fault

import (
	"fmt"
	"runtime"
	"strconv"
)

// newRecordAt builds the record for a raise helper, capturing the
// frame skip levels above this function as the fault location. The
// file is reported exactly as runtime.Caller returns it (absolute
// unless the binary was built with -trimpath); the column is always
// unknown for locations captured from Go code.
func newRecordAt(kind Kind, message string, skip int) *Record {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		file, line = "", 0
	}
	return &Record{kind: kind, message: message, file: file, line: line}
}

// The message builders below use strconv appends instead of fmt so
// that the bounds and arithmetic guards stay allocation-light: one
// string per fault, no boxing of operands.

func indexMessage(index, length int) string {
	b := make([]byte, 0, 56)
	b = append(b, "index out of bounds: the len is "...)
	b = strconv.AppendInt(b, int64(length), 10)
	b = append(b, " but the index is "...)
	b = strconv.AppendInt(b, int64(index), 10)
	return string(b)
}

func sliceMessage(low, high, capacity int) string {
	b := make([]byte, 0, 64)
	b = append(b, "slice bounds out of range: the cap is "...)
	b = strconv.AppendInt(b, int64(capacity), 10)
	b = append(b, " but the range is ["...)
	b = strconv.AppendInt(b, int64(low), 10)
	b = append(b, ':')
	b = strconv.AppendInt(b, int64(high), 10)
	b = append(b, ']')
	return string(b)
}

func divideByZeroMessage() string   { return "attempt to divide by zero" }
func divideOverflowMessage() string { return "attempt to divide with overflow" }

func assertMessage(message string) string { return message }

func unreachableMessage(description string) string {
	if description == "" {
		return "internal error: entered unreachable code"
	}
	return "internal error: entered unreachable code: " + description
}

func raisefMessage(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
