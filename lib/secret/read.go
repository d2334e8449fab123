// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadFromPath loads key material from path into a locked buffer. A
// path of "-" reads standard input to EOF instead, so a seal key or an
// age identity can be piped in without touching the filesystem.
// Interior newlines survive (age identity files carry comment lines);
// only surrounding whitespace is trimmed. An empty source is an error.
// The caller owns the returned buffer and must close it.
func ReadFromPath(path string) (*Buffer, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, errors.New("secret is empty")
	}

	// NewFromBytes copies into mmap-backed memory and zeros trimmed;
	// zeroing data afterwards clears the untrimmed prefix and suffix.
	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	return buffer, err
}

func readSource(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	return os.ReadFile(path)
}
