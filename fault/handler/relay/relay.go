// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay binds a fault handler that forwards the crash
// envelope to a local collector before terminating.
//
// Import it for effect:
//
//	import _ "github.com/faultline-project/faultline/fault/handler/relay"
//
// On dispatch the handler writes the diagnostic line to standard
// error, encodes the crash envelope, and sends it to the collector's
// unix socket as one length-prefixed CBOR frame. The collector
// acknowledges with a single byte once the record is in its store;
// only then does the handler abort without writing anything locally.
// When the socket is unreachable, the exchange times out, or the
// collector refuses the record, the handler falls back to a direct
// write into the local crash store and aborts.
//
// The whole exchange is bounded by Config.Timeout. A hung collector
// must not keep a crashed process alive.
package relay

import (
	"fmt"
	"io"
	"net"
	"os"
	"sync/atomic"
	"time"
	_ "unsafe" // for go:linkname

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/fault/handler/internal/report"
	"github.com/faultline-project/faultline/fault/handler/internal/stop"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/flightrec"
	"github.com/faultline-project/faultline/lib/scrub"
	"github.com/faultline-project/faultline/lib/secret"
)

// DefaultTimeout bounds the relay exchange: dial, send, and ack.
const DefaultTimeout = 3 * time.Second

// Config controls the relay handler. The zero value is usable.
type Config struct {
	// Socket is the collector's unix socket path. Empty means
	// $FAULTLINE_SOCKET, falling back to
	// crashlog.DefaultSocketPath.
	Socket string

	// Timeout bounds the whole exchange. Zero means DefaultTimeout.
	Timeout time.Duration

	// Dir is the crash store directory for the local fallback.
	// Empty selects the default location (see the persist handler).
	Dir string

	// Flight, when set, contributes its snapshot to the record.
	Flight *flightrec.Recorder

	// Scrub, when set, redacts the fault message and the flight
	// snapshot before the record leaves the process.
	Scrub *scrub.Policy

	// Key, when set, seals the local fallback record at rest.
	// Relayed frames are not sealed; the socket is root-owned and
	// the collector applies its own at-rest policy.
	Key *secret.Buffer

	// Compression selects the payload compression of the local
	// fallback record.
	Compression crashlog.CompressionTag

	// Labels are attached to every record.
	Labels map[string]string
}

var current atomic.Pointer[Config]

// Configure installs the handler configuration. Call it from main
// before any goroutine that can fault; the last call wins.
func Configure(cfg Config) {
	snapshot := cfg
	if len(cfg.Labels) > 0 {
		labels := make(map[string]string, len(cfg.Labels))
		for key, value := range cfg.Labels {
			labels[key] = value
		}
		snapshot.Labels = labels
	}
	current.Store(&snapshot)
}

//go:linkname handle github.com/faultline-project/faultline/fault.handle
func handle(record *fault.Record) {
	cfg := current.Load()
	if cfg == nil {
		cfg = &Config{}
	}

	var buf [512]byte
	line := record.AppendDiagnostic(buf[:0])
	line = append(line, '\n')
	stop.Write(line)

	spec := &report.Spec{
		Dir:         cfg.Dir,
		Flight:      cfg.Flight,
		Scrub:       cfg.Scrub,
		Key:         cfg.Key,
		Compression: cfg.Compression,
		Labels:      cfg.Labels,
	}
	envelope := report.Envelope(record, spec)

	socket := cfg.Socket
	if socket == "" {
		socket = os.Getenv("FAULTLINE_SOCKET")
	}
	if socket == "" {
		socket = crashlog.DefaultSocketPath
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if err := send(socket, timeout, envelope); err != nil {
		stop.Write([]byte("faultline: relay to " + socket + " failed: " + err.Error() + "\n"))
		if path, err := report.Store(envelope, spec); err != nil {
			stop.Write([]byte("faultline: persist failed: " + err.Error() + "\n"))
		} else {
			stop.Write([]byte("faultline: crash record written to " + path + "\n"))
		}
	} else {
		stop.Write([]byte("faultline: crash record relayed via " + socket + "\n"))
	}

	stop.Abort()
}

// send performs one relay exchange: connect, write the frame, read
// the acknowledgement. The deadline covers all three steps.
func send(socket string, timeout time.Duration, envelope *crashlog.Envelope) error {
	conn, err := net.DialTimeout("unix", socket, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}
	if err := crashlog.WriteWire(conn, envelope); err != nil {
		return err
	}

	var ack [1]byte
	if _, err := io.ReadFull(conn, ack[:]); err != nil {
		return fmt.Errorf("reading acknowledgement: %w", err)
	}
	if ack[0] != crashlog.Ack {
		return fmt.Errorf("collector refused the record (0x%02x)", ack[0])
	}
	return nil
}
