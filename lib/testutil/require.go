// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"
	"time"
)

// RequireReceive reads one value from ch and returns it, failing the
// test if nothing arrives within timeout. The what argument names the
// value being waited for and appears in the failure message.
func RequireReceive[T any](t testing.TB, ch <-chan T, timeout time.Duration, what string) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed before delivering a value (%s)", what)
		}
		return v
	case <-timer.C:
		t.Fatalf("gave up after %v (%s)", timeout, what)
	}
	var zero T
	return zero
}
