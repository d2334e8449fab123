// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashindex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/faultline-project/faultline/fault"
	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/sqlitepool"
)

// schema creates the crashes table. Times are Unix nanoseconds so the
// captured_at index sorts and range-scans without date parsing. Labels
// are a JSON object queried with json_extract. "col" because COLUMN is
// an SQL keyword.
const schema = `
	CREATE TABLE IF NOT EXISTS crashes (
		name        TEXT PRIMARY KEY,
		captured_at INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		message     TEXT,
		file        TEXT,
		line        INTEGER,
		col         INTEGER,
		hostname    TEXT,
		executable  TEXT,
		pid         INTEGER,
		go_runtime  TEXT,
		os          TEXT,
		arch        TEXT,
		labels      TEXT,
		flight_size INTEGER NOT NULL,
		sealed      INTEGER NOT NULL,
		compression TEXT NOT NULL,
		size        INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_crashes_time ON crashes(captured_at);
	CREATE INDEX IF NOT EXISTS idx_crashes_executable ON crashes(executable, captured_at);
	CREATE INDEX IF NOT EXISTS idx_crashes_kind ON crashes(kind, captured_at);
`

// Config holds the parameters for opening a crash index.
type Config struct {
	// Path is the filesystem path to the index database. The parent
	// directory must exist. Required.
	Path string

	// PoolSize is the connection pool size. Defaults to 4 if zero or
	// negative.
	PoolSize int

	// ReadOnly opens the index without write access. The database
	// must already exist; schema creation is skipped.
	ReadOnly bool

	// Logger receives operational messages. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Index is a queryable SQLite index over crash records. Safe for
// concurrent use.
type Index struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// Open opens or creates the crash index at cfg.Path.
func Open(cfg Config) (*Index, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("crash index: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	var onConnect func(conn *sqlite.Conn) error
	if !cfg.ReadOnly {
		onConnect = func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		}
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:      cfg.Path,
		PoolSize:  poolSize,
		ReadOnly:  cfg.ReadOnly,
		Logger:    logger,
		OnConnect: onConnect,
	})
	if err != nil {
		return nil, fmt.Errorf("crash index: %w", err)
	}

	return &Index{pool: pool, logger: logger}, nil
}

// Close closes the underlying connection pool.
func (x *Index) Close() error {
	return x.pool.Close()
}

// Row is one indexed crash record: the envelope fields a query can
// filter on, plus the store entry's file metadata.
type Row struct {
	Name        string            `json:"name"`
	CapturedAt  time.Time         `json:"captured_at"`
	Kind        fault.Kind        `json:"kind"`
	Message     string            `json:"message,omitempty"`
	File        string            `json:"file,omitempty"`
	Line        int               `json:"line,omitempty"`
	Column      int               `json:"column,omitempty"`
	Hostname    string            `json:"hostname,omitempty"`
	Executable  string            `json:"executable,omitempty"`
	PID         int               `json:"pid,omitempty"`
	Runtime     string            `json:"runtime,omitempty"`
	OS          string            `json:"os,omitempty"`
	Arch        string            `json:"arch,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	FlightSize  int64             `json:"flight_size,omitempty"`
	Sealed      bool              `json:"sealed"`
	Compression string            `json:"compression"`
	Size        int64             `json:"size"`
}

// Add indexes one stored crash record. Re-adding the same name
// replaces the existing row, so replays and rescans are idempotent.
func (x *Index) Add(ctx context.Context, envelope *crashlog.Envelope, entry crashlog.Entry) error {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("crash index: add: %w", err)
	}
	defer x.pool.Put(conn)

	return insertRow(conn, envelope, entry)
}

// insertRow writes one crashes row on an already-held connection.
func insertRow(conn *sqlite.Conn, envelope *crashlog.Envelope, entry crashlog.Entry) error {
	var labelsJSON any
	if len(envelope.Labels) > 0 {
		data, err := json.Marshal(envelope.Labels)
		if err != nil {
			return fmt.Errorf("crash index: marshal labels: %w", err)
		}
		labelsJSON = string(data)
	}

	err := sqlitex.Execute(conn, `INSERT OR REPLACE INTO crashes
		(name, captured_at, kind, message, file, line, col, hostname,
		 executable, pid, go_runtime, os, arch, labels, flight_size,
		 sealed, compression, size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				entry.Name,
				envelope.CapturedAt.UnixNano(),
				envelope.Kind.String(),
				envelope.Message,
				envelope.File,
				envelope.Line,
				envelope.Column,
				envelope.Hostname,
				envelope.Executable,
				envelope.PID,
				envelope.Runtime,
				envelope.OS,
				envelope.Arch,
				labelsJSON,
				int64(len(envelope.Flight)),
				boolToInt(entry.Sealed),
				entry.Compression,
				entry.Size,
			},
		})
	if err != nil {
		return fmt.Errorf("crash index: insert %s: %w", entry.Name, err)
	}
	return nil
}

// Remove deletes the row for a crash record, typically after the file
// was pruned. Removing an unindexed name is a no-op.
func (x *Index) Remove(ctx context.Context, name string) error {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("crash index: remove: %w", err)
	}
	defer x.pool.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM crashes WHERE name = ?",
		&sqlitex.ExecOptions{Args: []any{name}})
	if err != nil {
		return fmt.Errorf("crash index: remove %s: %w", name, err)
	}
	return nil
}

// Get returns the row for a crash record name, or nil if the name is
// not indexed.
func (x *Index) Get(ctx context.Context, name string) (*Row, error) {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("crash index: get: %w", err)
	}
	defer x.pool.Put(conn)

	var row *Row
	err = sqlitex.Execute(conn, selectColumns+" FROM crashes WHERE name = ?",
		&sqlitex.ExecOptions{
			Args: []any{name},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				scanned, err := scanRow(stmt)
				if err != nil {
					return err
				}
				row = &scanned
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("crash index: get %s: %w", name, err)
	}
	return row, nil
}

// Filter specifies query criteria. All fields are optional;
// zero-valued fields are not applied.
type Filter struct {
	// Kind is an exact match on the fault kind ("panic", "index", ...).
	Kind string

	// Executable matches the full executable path, or just its final
	// path element so queries can say "ingestd" instead of
	// "/usr/bin/ingestd".
	Executable string

	// Search is a substring match on the fault message.
	Search string

	// Labels must all match the indexed label set.
	Labels map[string]string

	// Since and Until bound the capture time. Zero means unbounded.
	Since time.Time
	Until time.Time

	// Limit caps the number of rows returned. Defaults to 100.
	Limit int
}

// Query returns rows matching the filter, newest first.
func (x *Index) Query(ctx context.Context, filter Filter) ([]Row, error) {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("crash index: query: %w", err)
	}
	defer x.pool.Put(conn)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var conditions []string
	var args []any

	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Executable != "" {
		conditions = append(conditions, "(executable = ? OR executable LIKE ?)")
		args = append(args, filter.Executable, "%/"+filter.Executable)
	}
	if filter.Search != "" {
		conditions = append(conditions, "message LIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}
	for key, value := range filter.Labels {
		conditions = append(conditions, "json_extract(labels, ?) = ?")
		args = append(args, "$."+key, value)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "captured_at >= ?")
		args = append(args, filter.Since.UnixNano())
	}
	if !filter.Until.IsZero() {
		conditions = append(conditions, "captured_at <= ?")
		args = append(args, filter.Until.UnixNano())
	}

	query := selectColumns + " FROM crashes"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY captured_at DESC, name DESC LIMIT ?"
	args = append(args, limit)

	var rows []Row
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			row, err := scanRow(stmt)
			if err != nil {
				return err
			}
			rows = append(rows, row)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("crash index: query: %w", err)
	}
	return rows, nil
}

// Recent returns the newest limit rows.
func (x *Index) Recent(ctx context.Context, limit int) ([]Row, error) {
	return x.Query(ctx, Filter{Limit: limit})
}

// Stats summarizes the indexed crashes.
type Stats struct {
	// TotalCount is the number of indexed crash records.
	TotalCount int64 `json:"total_count"`

	// ByKind and ByExecutable count records per fault kind and per
	// executable path.
	ByKind       map[string]int64 `json:"by_kind,omitempty"`
	ByExecutable map[string]int64 `json:"by_executable,omitempty"`

	// OldestCapture and NewestCapture bound the indexed time range.
	// Zero when the index is empty.
	OldestCapture time.Time `json:"oldest_capture"`
	NewestCapture time.Time `json:"newest_capture"`

	// DatabaseSizeBytes is the index file size (page_count * page_size).
	DatabaseSizeBytes int64 `json:"database_size_bytes"`
}

// Stats returns aggregate counts over the whole index.
func (x *Index) Stats(ctx context.Context) (Stats, error) {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("crash index: stats: %w", err)
	}
	defer x.pool.Put(conn)

	stats := Stats{
		ByKind:       make(map[string]int64),
		ByExecutable: make(map[string]int64),
	}

	err = sqlitex.Execute(conn,
		"SELECT COUNT(*), MIN(captured_at), MAX(captured_at) FROM crashes",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stats.TotalCount = stmt.ColumnInt64(0)
				if !stmt.ColumnIsNull(1) {
					stats.OldestCapture = time.Unix(0, stmt.ColumnInt64(1)).UTC()
				}
				if !stmt.ColumnIsNull(2) {
					stats.NewestCapture = time.Unix(0, stmt.ColumnInt64(2)).UTC()
				}
				return nil
			},
		})
	if err != nil {
		return stats, fmt.Errorf("crash index: stats totals: %w", err)
	}

	err = sqlitex.Execute(conn,
		"SELECT kind, COUNT(*) FROM crashes GROUP BY kind",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stats.ByKind[stmt.ColumnText(0)] = stmt.ColumnInt64(1)
				return nil
			},
		})
	if err != nil {
		return stats, fmt.Errorf("crash index: stats by kind: %w", err)
	}

	err = sqlitex.Execute(conn,
		"SELECT executable, COUNT(*) FROM crashes GROUP BY executable",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stats.ByExecutable[stmt.ColumnText(0)] = stmt.ColumnInt64(1)
				return nil
			},
		})
	if err != nil {
		return stats, fmt.Errorf("crash index: stats by executable: %w", err)
	}

	err = sqlitex.Execute(conn,
		"SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stats.DatabaseSizeBytes = stmt.ColumnInt64(0)
				return nil
			},
		})
	if err != nil {
		return stats, fmt.Errorf("crash index: database size: %w", err)
	}

	return stats, nil
}

// selectColumns is the shared SELECT list; scanRow depends on this
// column order.
const selectColumns = `SELECT name, captured_at, kind, message, file, line, col,
	hostname, executable, pid, go_runtime, os, arch, labels,
	flight_size, sealed, compression, size`

func scanRow(stmt *sqlite.Stmt) (Row, error) {
	var row Row

	row.Name = stmt.ColumnText(0)
	row.CapturedAt = time.Unix(0, stmt.ColumnInt64(1)).UTC()

	kindText := stmt.ColumnText(2)
	if err := row.Kind.UnmarshalText([]byte(kindText)); err != nil {
		return row, fmt.Errorf("crash index: parse kind %q: %w", kindText, err)
	}

	row.Message = stmt.ColumnText(3)
	row.File = stmt.ColumnText(4)
	row.Line = stmt.ColumnInt(5)
	row.Column = stmt.ColumnInt(6)
	row.Hostname = stmt.ColumnText(7)
	row.Executable = stmt.ColumnText(8)
	row.PID = stmt.ColumnInt(9)
	row.Runtime = stmt.ColumnText(10)
	row.OS = stmt.ColumnText(11)
	row.Arch = stmt.ColumnText(12)

	if !stmt.ColumnIsNull(13) {
		labelsJSON := stmt.ColumnText(13)
		if err := json.Unmarshal([]byte(labelsJSON), &row.Labels); err != nil {
			return row, fmt.Errorf("crash index: unmarshal labels: %w", err)
		}
	}

	row.FlightSize = stmt.ColumnInt64(14)
	row.Sealed = stmt.ColumnInt(15) != 0
	row.Compression = stmt.ColumnText(16)
	row.Size = stmt.ColumnInt64(17)

	return row, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
