// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package stop

import "golang.org/x/sys/unix"

// park sleeps in the kernel instead of spinning. Pause returns every
// time a signal is delivered, so it runs in a loop.
func park() {
	for {
		unix.Pause()
	}
}
