// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "testing"

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{2150, "2.1 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, test := range tests {
		if got := FormatSize(test.n); got != test.want {
			t.Errorf("FormatSize(%d): got %q, want %q", test.n, got, test.want)
		}
	}
}
