// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashui

import (
	"fmt"
	"sync"

	"github.com/faultline-project/faultline/lib/crashlog"
	"github.com/faultline-project/faultline/lib/secret"
)

// Item is one crash record as the viewer sees it: the store entry,
// the decoded envelope when the record could be opened, and the triage
// note sidecar.
type Item struct {
	Entry crashlog.Entry

	// Envelope is nil when the record could not be opened: sealed
	// without a key, or corrupt. Such rows still appear in the list
	// so the operator knows they exist.
	Envelope *crashlog.Envelope

	// Note is the record's triage note, empty when none exists.
	Note string
}

// Kind returns the fault kind name, or "" when the envelope is not
// available.
func (item Item) Kind() string {
	if item.Envelope == nil {
		return ""
	}
	return item.Envelope.Kind.String()
}

// Locked reports whether the record is sealed and no key was available
// to open it.
func (item Item) Locked() bool {
	return item.Entry.Sealed && item.Envelope == nil
}

// Snapshot is a point-in-time view of the store, newest record first.
type Snapshot struct {
	Items []Item
	Dir   string
}

// Source abstracts crash data access for the viewer.
type Source interface {
	// Load reads the current state of the store. Called at startup
	// and on explicit reload.
	Load() (Snapshot, error)

	// Annotate appends a timestamped note to a record.
	Annotate(name, text string) error
}

// StoreSource reads records from a local crash store. A nil key is
// fine; sealed records then surface as locked items instead of
// failing the whole load.
type StoreSource struct {
	mutex sync.Mutex
	store *crashlog.Store
	key   *secret.Buffer
}

// NewStoreSource creates a StoreSource over an open store. The source
// borrows the key for the lifetime of the viewer; the caller closes it
// after the program exits.
func NewStoreSource(store *crashlog.Store, key *secret.Buffer) *StoreSource {
	return &StoreSource{store: store, key: key}
}

// Load reads every record in the store, newest first. Records that
// cannot be decoded (sealed without a key, torn writes) are kept as
// envelope-less items rather than dropped: a crash browser that hides
// crashes defeats its purpose.
func (source *StoreSource) Load() (Snapshot, error) {
	source.mutex.Lock()
	defer source.mutex.Unlock()

	entries, err := source.store.List()
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing crash store: %w", err)
	}

	items := make([]Item, 0, len(entries))
	for index := len(entries) - 1; index >= 0; index-- {
		entry := entries[index]
		item := Item{Entry: entry}

		if !entry.Sealed || source.key != nil {
			if envelope, err := source.store.Read(entry.Name, source.key); err == nil {
				item.Envelope = envelope
			}
		}
		if note, err := source.store.Note(entry.Name); err == nil {
			item.Note = note
		}

		items = append(items, item)
	}

	return Snapshot{Items: items, Dir: source.store.Dir()}, nil
}

// Annotate appends a timestamped note to the named record.
func (source *StoreSource) Annotate(name, text string) error {
	source.mutex.Lock()
	defer source.mutex.Unlock()
	return source.store.Annotate(name, text)
}
