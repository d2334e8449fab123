// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashlog

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/faultline-project/faultline/lib/codec"
)

// Relay protocol. A crashing process forwards its envelope to the
// local collector as a single length-prefixed CBOR frame (4-byte
// big-endian length, then the envelope) and waits for a one-byte
// acknowledgement before dying. The collector sends Ack only after
// the record is safely in its store, so an acked sender can skip its
// local fallback write.
const (
	// MaxWireSize caps a relayed envelope frame. It sits well above
	// any real envelope (the flight snapshot dominates, and scrub
	// policies cap that far lower) and exists so a corrupt length
	// prefix cannot make the collector allocate gigabytes.
	MaxWireSize = 4 << 20

	// Ack is the collector's acceptance byte (ASCII ACK). Senders
	// treat any other answer as a refusal.
	Ack byte = 0x06

	// Nak is the collector's refusal byte (ASCII NAK), sent when the
	// record could not be made durable.
	Nak byte = 0x15

	// DefaultSocketPath is the conventional collector endpoint.
	DefaultSocketPath = "/run/faultline/collectd.sock"
)

// WriteWire writes the envelope to w as one length-prefixed frame.
func WriteWire(w io.Writer, envelope *Envelope) error {
	data, err := codec.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}
	if len(data) > MaxWireSize {
		return fmt.Errorf("envelope is %d bytes, larger than the %d-byte frame limit", len(data), MaxWireSize)
	}

	var lengthPrefix [4]byte
	binary.BigEndian.PutUint32(lengthPrefix[:], uint32(len(data)))
	if _, err := w.Write(lengthPrefix[:]); err != nil {
		return fmt.Errorf("writing frame length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing frame body: %w", err)
	}
	return nil
}

// ReadWire reads one length-prefixed envelope frame from r. Frames
// larger than MaxWireSize are rejected before any allocation, and the
// envelope schema is checked the same way Decode checks stored files.
func ReadWire(r io.Reader) (*Envelope, error) {
	var lengthPrefix [4]byte
	if _, err := io.ReadFull(r, lengthPrefix[:]); err != nil {
		return nil, fmt.Errorf("reading frame length: %w", err)
	}
	length := binary.BigEndian.Uint32(lengthPrefix[:])
	if length > MaxWireSize {
		return nil, fmt.Errorf("frame is %d bytes, larger than the %d-byte limit", length, MaxWireSize)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("reading frame body: %w", err)
	}

	var envelope Envelope
	if err := codec.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decoding relayed envelope: %w", err)
	}
	if envelope.Schema != EnvelopeSchema {
		return nil, fmt.Errorf("relayed envelope schema %d is not supported (this code supports schema %d)",
			envelope.Schema, EnvelopeSchema)
	}
	return &envelope, nil
}
