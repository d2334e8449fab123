// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package stop

import "time"

func park() {
	for {
		time.Sleep(time.Hour)
	}
}
