// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashindex

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/secret"
)

// Rescan reconciles the index against the store: rows whose files no
// longer exist are removed, and files missing from the index are
// decoded and added. Files already indexed are not re-read, so routine
// rescans cost one directory listing plus one query.
//
// Sealed records need key to decode; with a nil key (or a wrong one)
// they are skipped with a warning and stay unindexed until a rescan
// runs with the right key. The whole reconciliation happens in one
// transaction, so a concurrent query sees either the old index or the
// new one.
func (x *Index) Rescan(ctx context.Context, store *crashlog.Store, key *secret.Buffer) (added, removed int, err error) {
	entries, err := store.List()
	if err != nil {
		return 0, 0, fmt.Errorf("crash index: rescan: %w", err)
	}

	conn, err := x.pool.Take(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("crash index: rescan: %w", err)
	}
	defer x.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return 0, 0, fmt.Errorf("crash index: rescan: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	indexed := make(map[string]bool)
	err = sqlitex.Execute(conn, "SELECT name FROM crashes", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			indexed[stmt.ColumnText(0)] = true
			return nil
		},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("crash index: rescan: listing rows: %w", err)
	}

	present := make(map[string]bool, len(entries))
	for _, entry := range entries {
		present[entry.Name] = true
	}

	for name := range indexed {
		if present[name] {
			continue
		}
		err = sqlitex.Execute(conn, "DELETE FROM crashes WHERE name = ?",
			&sqlitex.ExecOptions{Args: []any{name}})
		if err != nil {
			return added, removed, fmt.Errorf("crash index: rescan: removing %s: %w", name, err)
		}
		removed++
	}

	skipped := 0
	for _, entry := range entries {
		if indexed[entry.Name] {
			continue
		}
		envelope, readErr := store.Read(entry.Name, key)
		if readErr != nil {
			skipped++
			x.logger.Warn("rescan: skipping unreadable record",
				"name", entry.Name,
				"sealed", entry.Sealed,
				"error", readErr,
			)
			continue
		}
		if err = insertRow(conn, envelope, entry); err != nil {
			return added, removed, err
		}
		added++
	}

	x.logger.Info("rescan complete",
		"added", added,
		"removed", removed,
		"skipped", skipped,
	)
	return added, removed, nil
}
