// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package stop implements the terminal actions shared by the fault
// handler packages: parking the faulting goroutine, aborting the
// process, and exiting with a code.
//
// Production implementations never return. Tests swap them out with
// the Swap hooks, whose replacements may return so a test can observe
// that a handler reached its terminal action. The hooks are not safe
// for concurrent use; swap them from a single goroutine.
package stop

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

var (
	parkFn  = park
	abortFn = abort
	exitFn  = os.Exit
	execFn  = unix.Exec

	// stderrFD is the descriptor Write targets. Tests point it at a
	// pipe to observe handler output.
	stderrFD = 2
)

// Park blocks the calling goroutine forever.
func Park() {
	parkFn()
}

// Abort raises SIGABRT so the kernel records an abnormal exit and, where
// resource limits allow one, a core dump. Exit code 2 is the fallback
// when the signal is blocked or ignored.
func Abort() {
	abortFn()
}

// Exit terminates the process with the given code.
func Exit(code int) {
	exitFn(code)
}

// Exec replaces the current process image, preserving the pid. It
// returns only on failure.
func Exec(argv0 string, argv, envv []string) error {
	return execFn(argv0, argv, envv)
}

func abort() {
	unix.Kill(unix.Getpid(), unix.SIGABRT)
	time.Sleep(time.Second)
	os.Exit(2)
}

// Write writes p in full to the stderr descriptor, retrying EINTR and
// short writes. Errors are swallowed: a fault handler has nowhere left
// to report them. The raw syscall sidesteps os.Stderr's lock, which
// may be held by the goroutine that faulted.
func Write(p []byte) {
	fd := stderrFD
	for len(p) > 0 {
		n, err := unix.Write(fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil || n <= 0 {
			return
		}
		p = p[n:]
	}
}

// SwapPark replaces the Park implementation and returns a func that
// restores the previous one.
func SwapPark(fn func()) (restore func()) {
	prev := parkFn
	parkFn = fn
	return func() { parkFn = prev }
}

// SwapAbort replaces the Abort implementation and returns a func that
// restores the previous one.
func SwapAbort(fn func()) (restore func()) {
	prev := abortFn
	abortFn = fn
	return func() { abortFn = prev }
}

// SwapExit replaces the Exit implementation and returns a func that
// restores the previous one.
func SwapExit(fn func(code int)) (restore func()) {
	prev := exitFn
	exitFn = fn
	return func() { exitFn = prev }
}

// SwapExec replaces the Exec implementation and returns a func that
// restores the previous one.
func SwapExec(fn func(argv0 string, argv, envv []string) error) (restore func()) {
	prev := execFn
	execFn = fn
	return func() { execFn = prev }
}

// SwapStderr redirects Write to fd and returns a func that restores
// the previous descriptor.
func SwapStderr(fd int) (restore func()) {
	prev := stderrFD
	stderrFD = fd
	return func() { stderrFD = prev }
}
