// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package content

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/metrics"
	"github.com/howlinyuma/webesync/internal/models"
	"github.com/howlinyuma/webesync/internal/store"
	"github.com/howlinyuma/webesync/internal/webe"
)

// Source names the tier a cache read resolved from.
type Source string

const (
	SourceMemory   Source = "memory"
	SourceRemote   Source = "remote"
	SourceSnapshot Source = "snapshot"
	SourceStale    Source = "stale"
	SourceFallback Source = "fallback"
)

// Windows applied to the built-in fallback fixture when it is cached.
const (
	fallbackFreshWindow = 120 * time.Second
	fallbackStaleWindow = 420 * time.Second
)

// DefaultSnapshotTTL is how long a persisted snapshot is believed fresh
// enough to serve when the remote API is unreachable.
const DefaultSnapshotTTL = time.Hour

// Fetcher is the remote content source.
type Fetcher interface {
	Enabled() bool
	FetchContent(ctx context.Context, slug string) (*webe.FetchResult, error)
}

// SnapshotStore is the persisted tier behind the memory cache. Writes are
// best-effort from the cache's point of view.
type SnapshotStore interface {
	Snapshot(slug string) (models.FestivalContent, time.Time, error)
	SaveBaseContent(slug, pageID string, content models.FestivalContent, fetchedAt time.Time) error
}

type cacheEntry struct {
	data      models.FestivalContent
	expiresAt time.Time
	staleAt   time.Time
}

// Cache resolves festival content through a fixed fallback chain: fresh
// memory entry, remote fetch, persisted snapshot, stale memory entry, built-in
// fixture. Every tier's result is re-derived against the current pivot so the
// upcoming filter tracks wall-clock time. The clock and both collaborators
// are injectable so tests drive expiry deterministically.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry

	fetcher     Fetcher
	snapshots   SnapshotStore
	snapshotTTL time.Duration
	now         func() time.Time
}

// CacheOptions tune a Cache. Zero values select defaults.
type CacheOptions struct {
	SnapshotTTL time.Duration
	Clock       func() time.Time
}

// NewCache builds a Cache over the given remote fetcher and snapshot store.
// snapshots may be nil, which disables the persisted tier.
func NewCache(fetcher Fetcher, snapshots SnapshotStore, opts CacheOptions) *Cache {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = DefaultSnapshotTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Cache{
		entries:     make(map[string]*cacheEntry),
		fetcher:     fetcher,
		snapshots:   snapshots,
		snapshotTTL: opts.SnapshotTTL,
		now:         opts.Clock,
	}
}

// Get resolves content for the site. It never fails: the terminal tier is
// the built-in fixture. The returned Source says which tier answered.
func (c *Cache) Get(ctx context.Context, slug string) (models.FestivalContent, Source) {
	now := c.now()

	c.mu.Lock()
	if entry, ok := c.entries[slug]; ok && now.Before(entry.expiresAt) {
		data := entry.data.Clone()
		c.mu.Unlock()
		metrics.CacheResolutions.WithLabelValues(string(SourceMemory)).Inc()
		return Derive(data, now), SourceMemory
	}
	c.mu.Unlock()

	result, err := c.fetcher.FetchContent(ctx, slug)
	if err == nil {
		c.store(slug, result.Content, now.Add(result.MaxAge), now.Add(result.MaxAge+result.StaleWindow))
		c.persist(ctx, slug, result.Content, result.FetchedAt)
		metrics.CacheResolutions.WithLabelValues(string(SourceRemote)).Inc()
		return Derive(result.Content, now), SourceRemote
	}
	logging.Ctx(ctx).Warn().Err(err).Str("site", slug).Msg("remote fetch failed, walking cache fallback chain")

	var snapErr error
	if c.snapshots != nil {
		snap, writtenAt, err := c.snapshots.Snapshot(slug)
		snapErr = err
		if err == nil {
			age := now.Sub(writtenAt)
			if age >= 0 && age <= c.snapshotTTL {
				remaining := c.snapshotTTL - age
				c.store(slug, snap, now.Add(remaining), now.Add(remaining+webe.DefaultStaleWindow))
				metrics.CacheResolutions.WithLabelValues(string(SourceSnapshot)).Inc()
				return Derive(snap, now), SourceSnapshot
			}
		}
	}

	c.mu.Lock()
	if entry, ok := c.entries[slug]; ok && now.Before(entry.staleAt) {
		data := entry.data.Clone()
		// Each stale serve halves the remaining window so repeated upstream
		// failures converge on the fixture instead of serving ancient data.
		entry.staleAt = now.Add(entry.staleAt.Sub(now) / 2)
		c.mu.Unlock()
		metrics.CacheResolutions.WithLabelValues(string(SourceStale)).Inc()
		return Derive(data, now), SourceStale
	}
	c.mu.Unlock()

	fallback := FallbackContent(now)
	c.store(slug, fallback, now.Add(fallbackFreshWindow), now.Add(fallbackStaleWindow))
	if c.snapshots != nil && errors.Is(snapErr, store.ErrSiteNotFound) {
		// Only seed the store with fixture data when nothing was ever
		// persisted; an aged real snapshot must not be clobbered, and a
		// transient read error says nothing about what is stored.
		c.persist(ctx, slug, fallback, now)
	}
	metrics.CacheResolutions.WithLabelValues(string(SourceFallback)).Inc()
	return Derive(fallback, now), SourceFallback
}

// Invalidate drops the memory entry for a site. Called after a rebuild so
// the next read reflects the new persisted state.
func (c *Cache) Invalidate(slug string) {
	c.mu.Lock()
	delete(c.entries, slug)
	c.mu.Unlock()
}

func (c *Cache) store(slug string, data models.FestivalContent, expiresAt, staleAt time.Time) {
	c.mu.Lock()
	c.entries[slug] = &cacheEntry{
		data:      data.Clone(),
		expiresAt: expiresAt,
		staleAt:   staleAt,
	}
	c.mu.Unlock()
}

func (c *Cache) persist(ctx context.Context, slug string, data models.FestivalContent, fetchedAt time.Time) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.SaveBaseContent(slug, data.Meta.SourcePageID, data, fetchedAt); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("site", slug).Msg("best-effort snapshot persist failed")
	}
}
