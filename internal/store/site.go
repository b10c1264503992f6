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

	"github.com/howlinyuma/webesync/internal/models"
)

// EnsureSite returns the site's base content, seeding the site document with
// the provided content when no document exists yet. The returned content is
// always a copy the caller may mutate.
func (s *Store) EnsureSite(slug, pageID string, seed models.FestivalContent) (models.FestivalContent, error) {
	var base models.FestivalContent
	err := s.update(func(txn *badger.Txn) error {
		var doc models.SiteDoc
		err := getJSON(txn, siteKey(slug), &doc)
		if err == nil && doc.BaseContent != nil {
			base = doc.BaseContent.Clone()
			return nil
		}
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read site %s: %w", slug, err)
		}
		seeded := seed.Clone()
		doc.SiteSlug = slug
		if doc.PageID == "" {
			doc.PageID = pageID
		}
		doc.BaseContent = &seeded
		doc.UpdatedAt = s.now().UTC()
		base = seed.Clone()
		return setJSON(txn, siteKey(slug), &doc)
	})
	if err != nil {
		return models.FestivalContent{}, err
	}
	return base, nil
}

// GetSite loads the site document. Returns ErrSiteNotFound when absent.
func (s *Store) GetSite(slug string) (*models.SiteDoc, error) {
	var doc models.SiteDoc
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, siteKey(slug), &doc)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSiteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read site %s: %w", slug, err)
	}
	return &doc, nil
}

// SaveBaseContent records a freshly fetched remote payload as the site's base
// content. Missing site documents are created so a cold store still captures
// the first successful fetch.
func (s *Store) SaveBaseContent(slug, pageID string, content models.FestivalContent, fetchedAt time.Time) error {
	return s.update(func(txn *badger.Txn) error {
		var doc models.SiteDoc
		err := getJSON(txn, siteKey(slug), &doc)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read site %s: %w", slug, err)
		}
		doc.SiteSlug = slug
		if pageID != "" {
			doc.PageID = pageID
		}
		base := content.Clone()
		doc.BaseContent = &base
		doc.LastRefreshAt = fetchedAt.UTC()
		doc.UpdatedAt = s.now().UTC()
		return setJSON(txn, siteKey(slug), &doc)
	})
}

// SaveMergedContent records the derived content view assembled from the base
// payload and the live event set.
func (s *Store) SaveMergedContent(slug string, content models.FestivalContent, eventCount int) error {
	return s.update(func(txn *badger.Txn) error {
		var doc models.SiteDoc
		err := getJSON(txn, siteKey(slug), &doc)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSiteNotFound
		}
		if err != nil {
			return fmt.Errorf("read site %s: %w", slug, err)
		}
		merged := content.Clone()
		doc.Content = &merged
		doc.EventCount = eventCount
		doc.UpdatedAt = s.now().UTC()
		return setJSON(txn, siteKey(slug), &doc)
	})
}

// Snapshot returns the most recently persisted content for the site and the
// time it was written. The merged view is preferred over the raw base payload
// because it reflects webhook edits applied since the last remote fetch.
// Returns ErrSiteNotFound when neither is present.
func (s *Store) Snapshot(slug string) (models.FestivalContent, time.Time, error) {
	doc, err := s.GetSite(slug)
	if err != nil {
		return models.FestivalContent{}, time.Time{}, err
	}
	content := doc.Content
	if content == nil {
		content = doc.BaseContent
	}
	if content == nil {
		return models.FestivalContent{}, time.Time{}, ErrSiteNotFound
	}
	return content.Clone(), doc.UpdatedAt, nil
}
