// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Faultline
// packages.
//
// [SocketDir] creates a temporary directory in /tmp suitable for Unix
// domain sockets. This exists because Unix domain sockets have a
// 108-byte path limit (sun_path in sockaddr_un), and CI systems set
// TMPDIR to deeply nested paths that exceed this limit, making
// t.TempDir() unsuitable for socket files. The directory is
// automatically removed when the test completes.
//
// [RequireReceive] waits on a channel with a deadline so that a test
// waiting on a goroutine hangs for a bounded time instead of forever.
//
// Helpers call t.Fatalf on failure rather than returning errors, since
// test setup failures are not recoverable.
package testutil
