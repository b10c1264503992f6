// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/howlinyuma/webesync/internal/models"
)

// WebhookMeta carries per-delivery bookkeeping written to the site document
// alongside the event mutation.
type WebhookMeta struct {
	Action        models.EventAction
	CorrelationID string
	PageID        string
}

// ApplyEventUpsert writes an event document with deleted=false. The write is
// rejected (false, nil) when the event already holds a trigger timestamp that
// is not strictly older, so webhook retries and out-of-order deliveries are
// no-ops. The event write and site bookkeeping commit in one transaction.
func (s *Store) ApplyEventUpsert(slug string, event models.EventDetail, meta WebhookMeta, triggeredAt time.Time) (bool, error) {
	applied := false
	err := s.update(func(txn *badger.Txn) error {
		applied = false
		key := eventKey(slug, event.ID)
		var doc models.StoredEventDoc
		err := getJSON(txn, key, &doc)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read event %s/%s: %w", slug, event.ID, err)
		}
		if err == nil && !triggeredAt.After(doc.LastTriggeredAt) {
			return nil
		}
		// The overwritten payload is retained for audit, matching the
		// tombstone path.
		doc.PreviousData = doc.Data
		cloned := event.Clone()
		doc.EventID = event.ID
		doc.Data = &cloned
		doc.Deleted = false
		doc.LastAction = string(meta.Action)
		doc.LastTriggeredAt = triggeredAt.UTC()
		doc.UpdatedAt = s.now().UTC()
		if err := setJSON(txn, key, &doc); err != nil {
			return err
		}
		applied = true
		return s.recordWebhook(txn, slug, meta, triggeredAt)
	})
	return applied, err
}

// ApplyEventTombstone marks an event deleted, keeping the last known data as
// previousData for audit. Same strictly-greater trigger rule as upserts.
func (s *Store) ApplyEventTombstone(slug, eventID string, previous *models.EventDetail, meta WebhookMeta, triggeredAt time.Time) (bool, error) {
	applied := false
	err := s.update(func(txn *badger.Txn) error {
		applied = false
		key := eventKey(slug, eventID)
		var doc models.StoredEventDoc
		err := getJSON(txn, key, &doc)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read event %s/%s: %w", slug, eventID, err)
		}
		if err == nil && !triggeredAt.After(doc.LastTriggeredAt) {
			return nil
		}
		// The stored data is authoritative for the audit trail; the
		// delivery's previousEvent only fills in for unseen events.
		prev := doc.Data
		if prev == nil {
			prev = previous
		}
		if prev != nil {
			cloned := prev.Clone()
			prev = &cloned
		}
		doc.EventID = eventID
		doc.Data = nil
		doc.Deleted = true
		doc.PreviousData = prev
		doc.LastAction = string(meta.Action)
		doc.LastTriggeredAt = triggeredAt.UTC()
		doc.UpdatedAt = s.now().UTC()
		if err := setJSON(txn, key, &doc); err != nil {
			return err
		}
		applied = true
		return s.recordWebhook(txn, slug, meta, triggeredAt)
	})
	return applied, err
}

// recordWebhook stamps the site document with the delivery that just applied.
func (s *Store) recordWebhook(txn *badger.Txn, slug string, meta WebhookMeta, triggeredAt time.Time) error {
	var doc models.SiteDoc
	err := getJSON(txn, siteKey(slug), &doc)
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("read site %s: %w", slug, err)
	}
	doc.SiteSlug = slug
	if doc.PageID == "" && meta.PageID != "" {
		doc.PageID = meta.PageID
	}
	doc.LastWebhookAction = string(meta.Action)
	doc.LastWebhookCorrelationID = meta.CorrelationID
	doc.LastWebhookTriggerAt = triggeredAt.UTC()
	doc.UpdatedAt = s.now().UTC()
	return setJSON(txn, siteKey(slug), &doc)
}

// GetEvent loads one event document. Returns badger.ErrKeyNotFound when the
// event has never been seen.
func (s *Store) GetEvent(slug, eventID string) (*models.StoredEventDoc, error) {
	var doc models.StoredEventDoc
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, eventKey(slug, eventID), &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// LiveEvents returns the data of every non-tombstoned event document for the
// site, in key (event id) order.
func (s *Store) LiveEvents(slug string) ([]models.EventDetail, error) {
	events := []models.EventDetail{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = eventPrefix(slug)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var doc models.StoredEventDoc
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return fmt.Errorf("decode event under %s: %w", slug, err)
			}
			if doc.Deleted || doc.Data == nil {
				continue
			}
			events = append(events, doc.Data.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ReconcileEvents replaces the site's event documents with the authoritative
// remote set in a single transaction. Incoming events are upserted live;
// previously live events absent from the set are tombstoned with the reason
// suffixed "-removed". Documents carrying a newer trigger timestamp than the
// refresh itself are left alone so webhook edits racing a refresh survive.
func (s *Store) ReconcileEvents(slug string, events []models.EventDetail, reason models.RefreshReason, triggeredAt time.Time) error {
	incoming := make(map[string]models.EventDetail, len(events))
	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		incoming[ev.ID] = ev
	}
	now := s.now().UTC()
	ts := triggeredAt.UTC()
	return s.update(func(txn *badger.Txn) error {
		existing := map[string]models.StoredEventDoc{}
		opts := badger.DefaultIteratorOptions
		opts.Prefix = eventPrefix(slug)
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			var doc models.StoredEventDoc
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				it.Close()
				return fmt.Errorf("decode event under %s: %w", slug, err)
			}
			existing[doc.EventID] = doc
		}
		it.Close()

		for id, ev := range incoming {
			doc, seen := existing[id]
			if seen && doc.LastTriggeredAt.After(ts) {
				continue
			}
			cloned := ev.Clone()
			doc.EventID = id
			doc.Data = &cloned
			doc.Deleted = false
			doc.PreviousData = nil
			doc.LastAction = string(reason)
			doc.LastTriggeredAt = ts
			doc.UpdatedAt = now
			if err := setJSON(txn, eventKey(slug, id), &doc); err != nil {
				return err
			}
		}
		for id, doc := range existing {
			if _, keep := incoming[id]; keep {
				continue
			}
			if doc.Deleted || doc.LastTriggeredAt.After(ts) {
				continue
			}
			doc.PreviousData = doc.Data
			doc.Data = nil
			doc.Deleted = true
			doc.LastAction = string(reason) + "-removed"
			doc.LastTriggeredAt = ts
			doc.UpdatedAt = now
			if err := setJSON(txn, eventKey(slug, id), &doc); err != nil {
				return err
			}
		}
		return nil
	})
}
