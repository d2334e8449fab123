// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faultline-project/faultline/lib/crashindex"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/scrub"
	"github.com/faultline-project/faultline/lib/secret"
)

// readTimeout is how long the collector waits for the sender's single
// frame. The sender is mid-crash and writes immediately after
// connecting; a stalled read means the sender died mid-frame.
const readTimeout = 10 * time.Second

// writeTimeout bounds delivery of the one-byte answer.
const writeTimeout = 5 * time.Second

// Collector accepts relayed crash envelopes on a Unix socket and makes
// them durable. Each connection carries exactly one envelope and
// receives exactly one answer byte.
type Collector struct {
	store       *crashlog.Store
	index       *crashindex.Index
	policy      *scrub.Policy
	key         *secret.Buffer // nil stores records unsealed
	compression crashlog.CompressionTag
	retain      int // 0 keeps everything
	logger      *slog.Logger

	// ingestMu serializes index updates and retention pruning.
	// Concurrent crashes are rare, but a prune racing a prune would
	// try to remove the same files twice.
	ingestMu sync.Mutex

	// Counters for the shutdown summary, updated by connection
	// goroutines.
	accepted atomic.Uint64
	refused  atomic.Uint64

	// activeConnections tracks in-flight exchanges for graceful
	// shutdown. Serve waits for all of them before returning.
	activeConnections sync.WaitGroup
}

// Serve listens on the Unix socket and handles envelope exchanges
// until ctx is cancelled, then waits for in-flight envelopes to
// finish. Any stale socket file at the path is removed before
// listening, and the socket file is removed on return.
func (c *Collector) Serve(ctx context.Context, socketPath string) error {
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", socketPath, err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(socketPath)
	}()

	// Any process on the host may crash, whatever user it runs as.
	if err := os.Chmod(socketPath, 0666); err != nil {
		return fmt.Errorf("setting socket permissions: %w", err)
	}

	// Unblock Accept when the context is cancelled.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	c.logger.Info("collector listening", "socket", socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			c.logger.Error("accept failed", "error", err)
			continue
		}

		c.activeConnections.Add(1)
		go func() {
			defer c.activeConnections.Done()
			c.handleConnection(ctx, conn)
		}()
	}

	c.activeConnections.Wait()
	c.logger.Info("collector stopped",
		"accepted", c.accepted.Load(),
		"refused", c.refused.Load(),
	)
	return nil
}

// handleConnection runs one frame-answer exchange. The acceptance byte
// is sent as soon as the record is durable in the store; indexing and
// pruning happen after, so the dying sender is released as early as
// possible.
func (c *Collector) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	envelope, err := crashlog.ReadWire(conn)
	if err != nil {
		c.refuse(conn, fmt.Errorf("reading envelope: %w", err))
		return
	}

	name, err := c.ingest(envelope)
	if err != nil {
		c.refuse(conn, err)
		return
	}

	c.accepted.Add(1)
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write([]byte{crashlog.Ack}); err != nil {
		// The record is durable either way. At worst the sender times
		// out and writes a redundant fallback copy.
		c.logger.Debug("failed to deliver ack", "record", name, "error", err)
	}

	c.logger.Info("crash record stored",
		"record", name,
		"kind", envelope.Kind.String(),
		"executable", envelope.Executable,
		"pid", envelope.PID,
	)

	c.finish(ctx, envelope, name)
}

// refuse answers Nak and counts the refusal. The error is logged with
// the sender left anonymous: a refused frame may not decode far enough
// to say who sent it.
func (c *Collector) refuse(conn net.Conn, reason error) {
	c.refused.Add(1)
	c.logger.Warn("refusing crash record", "error", reason)

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write([]byte{crashlog.Nak}); err != nil {
		c.logger.Debug("failed to deliver nak", "error", err)
	}
}

// ingest scrubs the envelope and writes it durably into the store.
// The envelope is scrubbed in place so the indexed copy matches the
// stored one.
func (c *Collector) ingest(envelope *crashlog.Envelope) (string, error) {
	envelope.Message = c.policy.ApplyString(envelope.Message)
	envelope.Flight = c.policy.Apply(envelope.Flight)

	name, err := c.store.Write(envelope, crashlog.Options{
		Compression: c.compression,
		Key:         c.key,
	})
	if err != nil {
		return "", fmt.Errorf("storing record: %w", err)
	}
	return name, nil
}

// finish updates the index and applies retention, after the sender has
// already been acked. Both are derived or reversible state: failures
// are logged and left for the next rescan rather than refusing a
// record that is already durable.
func (c *Collector) finish(ctx context.Context, envelope *crashlog.Envelope, name string) {
	c.ingestMu.Lock()
	defer c.ingestMu.Unlock()

	entry, err := c.store.Stat(name)
	if err != nil {
		c.logger.Warn("stat of stored record failed, leaving index repair to rescan",
			"record", name, "error", err)
	} else if err := c.index.Add(ctx, envelope, entry); err != nil {
		c.logger.Warn("indexing record failed, leaving index repair to rescan",
			"record", name, "error", err)
	}

	if c.retain <= 0 {
		return
	}
	removed, err := c.store.Prune(c.retain)
	if err != nil {
		c.logger.Warn("pruning crash store failed", "error", err)
	}
	for _, prunedName := range removed {
		if err := c.index.Remove(ctx, prunedName); err != nil {
			c.logger.Warn("removing pruned record from index failed",
				"record", prunedName, "error", err)
		}
	}
	if len(removed) > 0 {
		c.logger.Info("retention pruned old records",
			"removed", len(removed), "retain", c.retain)
	}
}
