// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package demo implements the command that runs the faultline-demo
// program end to end and relays what the bound handler produced.
package demo
