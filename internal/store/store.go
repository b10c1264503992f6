// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Package store persists festival content in BadgerDB. It is the single
// source of truth shared across instances; the in-memory content cache is
// always rederivable from it.
//
// Layout (one JSON document per key):
//
//	site:<slug>                  SiteDoc
//	site:<slug>:event:<eventId>  StoredEventDoc
//	visitor:global               visitor counter
//	visitor:day:<date>           per-day marker
//	visitor:day:<date>:<hash>    per-visitor record
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/howlinyuma/webesync/internal/logging"
)

// ErrSiteNotFound indicates no document exists for the requested site slug.
var ErrSiteNotFound = errors.New("site not found")

// conflictRetries bounds retry attempts when concurrent transactions touch
// the same keys. Badger aborts the loser with ErrConflict.
const conflictRetries = 5

// Store is a BadgerDB-backed document store.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// OpenInMemory opens an ephemeral store. Used by tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock overrides the store's clock. Used by tests.
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// update runs fn in a read-write transaction, retrying on commit conflicts
// so concurrent webhook deliveries serialize instead of failing.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		logging.Debug().Int("attempt", attempt+1).Msg("transaction conflict, retrying")
	}
	return err
}

func siteKey(slug string) []byte {
	return []byte("site:" + slug)
}

func eventKey(slug, eventID string) []byte {
	return []byte("site:" + slug + ":event:" + eventID)
}

func eventPrefix(slug string) []byte {
	return []byte("site:" + slug + ":event:")
}

// getJSON reads and decodes one document inside txn. Returns
// badger.ErrKeyNotFound untouched so callers can branch on absence.
func getJSON(txn *badger.Txn, key []byte, out any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

// setJSON encodes and writes one document inside txn.
func setJSON(txn *badger.Txn, key []byte, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", key, err)
	}
	return txn.Set(key, data)
}
