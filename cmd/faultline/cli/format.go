// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// FormatSize renders a byte count in a compact human form for table
// and key/value output.
func FormatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
