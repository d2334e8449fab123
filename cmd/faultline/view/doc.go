// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package view implements the interactive crash browser command. The
// command wires the crash store into the terminal UI in lib/crashui
// and runs it full-screen.
package view
