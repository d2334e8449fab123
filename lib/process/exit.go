// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
)

// Fatal reports err on stderr in the "error: ..." form shared by every
// Faultline binary, then exits with status 1. It exists for failures in
// main() that happen before the structured logger is configured; after
// that point code should log and return instead.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
