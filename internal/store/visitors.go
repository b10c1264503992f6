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
)

var (
	visitorGlobalKey = []byte("visitor:global")
)

func visitorDayKey(day string) []byte {
	return []byte("visitor:day:" + day)
}

func visitorRecordKey(day, hash string) []byte {
	return []byte("visitor:day:" + day + ":" + hash)
}

// visitorCounter is the running unique-visitor total.
type visitorCounter struct {
	Count     int64     `json:"count"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// visitorDayDoc marks a calendar day with activity and its unique count.
type visitorDayDoc struct {
	Date      string    `json:"date"`
	Count     int64     `json:"count"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// visitorRecord is one anonymized visitor per day.
type visitorRecord struct {
	FirstSeenAt time.Time `json:"firstSeenAt"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
}

// RegisterVisitor records an anonymized visitor hash for the given calendar
// day and returns the global unique-visitor total. A hash already seen that
// day only bumps its lastSeenAt; the counters move on first sight only.
func (s *Store) RegisterVisitor(hash, day string) (int64, bool, error) {
	var (
		total      int64
		newVisitor bool
	)
	err := s.update(func(txn *badger.Txn) error {
		now := s.now().UTC()
		newVisitor = false

		var rec visitorRecord
		err := getJSON(txn, visitorRecordKey(day, hash), &rec)
		switch {
		case err == nil:
			rec.LastSeenAt = now
		case errors.Is(err, badger.ErrKeyNotFound):
			newVisitor = true
			rec = visitorRecord{FirstSeenAt: now, LastSeenAt: now}
		default:
			return fmt.Errorf("read visitor record: %w", err)
		}
		if err := setJSON(txn, visitorRecordKey(day, hash), &rec); err != nil {
			return err
		}

		var counter visitorCounter
		if err := getJSON(txn, visitorGlobalKey, &counter); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read visitor counter: %w", err)
		}
		if newVisitor {
			counter.Count++
			counter.UpdatedAt = now
			if err := setJSON(txn, visitorGlobalKey, &counter); err != nil {
				return err
			}

			var dayDoc visitorDayDoc
			if err := getJSON(txn, visitorDayKey(day), &dayDoc); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("read visitor day: %w", err)
			}
			dayDoc.Date = day
			dayDoc.Count++
			dayDoc.UpdatedAt = now
			if err := setJSON(txn, visitorDayKey(day), &dayDoc); err != nil {
				return err
			}
		}
		total = counter.Count
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return total, newVisitor, nil
}

// VisitorTotal returns the global unique-visitor count without mutating
// anything.
func (s *Store) VisitorTotal() (int64, error) {
	var counter visitorCounter
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, visitorGlobalKey, &counter)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read visitor counter: %w", err)
	}
	return counter.Count, nil
}
