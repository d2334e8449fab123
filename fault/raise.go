// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package fault

import "math"

// Raise dispatches an explicit fault. The message and the caller's
// source location are recorded (unless the build is stripped) and the
// call never returns.
func Raise(message string) {
	Trap(newRecordAt(KindPanic, message, 2))
}

// Raisef is Raise with fmt-style formatting. Unlike the other raise
// helpers it allocates while formatting; prefer Raise with a constant
// message where the fault can occur under memory pressure.
func Raisef(format string, args ...any) {
	Trap(newRecordAt(KindPanic, raisefMessage(format, args...), 2))
}

// Index checks that index addresses an element of a sequence of the
// given length and returns it, so a lookup can be guarded in place:
//
//	value := xs[fault.Index(i, len(xs))]
//
// An out-of-bounds index is a fatal fault.
func Index(index, length int) int {
	if index < 0 || index >= length {
		Trap(newRecordAt(KindIndex, indexMessage(index, length), 2))
	}
	return index
}

// Slice checks the bounds of the slice expression s[low:high] against
// the given capacity. A violation is a fatal fault.
func Slice(low, high, capacity int) {
	if low < 0 || high < low || high > capacity {
		Trap(newRecordAt(KindSlice, sliceMessage(low, high, capacity), 2))
	}
}

// Quotient returns numerator / denominator, treating division by zero
// and quotient overflow (math.MinInt64 / -1) as fatal faults rather
// than letting the first panic and the second silently wrap.
func Quotient(numerator, denominator int64) int64 {
	checkDivide(numerator, denominator)
	return numerator / denominator
}

// Remainder returns numerator % denominator under the same fault
// rules as Quotient.
func Remainder(numerator, denominator int64) int64 {
	checkDivide(numerator, denominator)
	return numerator % denominator
}

func checkDivide(numerator, denominator int64) {
	if denominator == 0 {
		Trap(newRecordAt(KindDivide, divideByZeroMessage(), 3))
	}
	if denominator == -1 && numerator == math.MinInt64 {
		Trap(newRecordAt(KindDivide, divideOverflowMessage(), 3))
	}
}

// Assert dispatches a fatal fault when condition is false. Assertions
// stay armed in release builds; they exist for invariants whose
// violation makes continuing more dangerous than dying.
func Assert(condition bool, message string) {
	if !condition {
		Trap(newRecordAt(KindAssert, assertMessage(message), 2))
	}
}

// Assertf is Assert with fmt-style formatting of the message.
func Assertf(condition bool, format string, args ...any) {
	if !condition {
		Trap(newRecordAt(KindAssert, raisefMessage(format, args...), 2))
	}
}

// Unreachable marks control flow the surrounding code promises can
// never execute. Reaching it is a fatal fault.
func Unreachable(description string) {
	Trap(newRecordAt(KindUnreachable, unreachableMessage(description), 2))
}
