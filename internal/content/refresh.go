// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package content

import (
	"context"
	"fmt"
	"time"

	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/metrics"
	"github.com/howlinyuma/webesync/internal/models"
)

// Refresher runs full content refreshes and merged-content rebuilds against
// the document store. A remote failure during refresh is a skip, not an
// error; store failures propagate because persistence is the whole point of
// the operation.
type Refresher struct {
	store   Store
	fetcher Fetcher
	cache   *Cache
	now     func() time.Time
}

// NewRefresher builds a Refresher. cache may be nil; when present its memory
// entry for a site is invalidated after every rebuild.
func NewRefresher(st Store, fetcher Fetcher, cache *Cache) *Refresher {
	return &Refresher{
		store:   st,
		fetcher: fetcher,
		cache:   cache,
		now:     time.Now,
	}
}

// SetClock overrides the refresher's clock. Used by tests.
func (r *Refresher) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Refresh pulls the full site payload from the WeBeFriends API, persists it
// as base content, reconciles the event documents against it, and rebuilds
// the merged snapshot. Unlike the cache's read path there is no fallback
// chain here: a remote failure skips the whole refresh.
func (r *Refresher) Refresh(ctx context.Context, slug string, reason models.RefreshReason, correlationID string) (models.ProcessResult, error) {
	log := logging.Ctx(ctx).With().Str("site", slug).Str("reason", string(reason)).Str("webhook_correlation_id", correlationID).Logger()
	started := r.now()

	result, err := r.fetcher.FetchContent(ctx, slug)
	if err != nil {
		log.Warn().Err(err).Msg("refresh skipped, remote fetch failed")
		metrics.RefreshRuns.WithLabelValues(string(reason), "skipped").Inc()
		return models.Skipped(models.ReasonRemoteFetchFailed), nil
	}

	now := r.now()
	base := Derive(result.Content, now)
	pageID := base.Meta.SourcePageID

	if _, err := r.store.EnsureSite(slug, pageID, MinimalContent(slug, pageID, now)); err != nil {
		metrics.RefreshRuns.WithLabelValues(string(reason), "error").Inc()
		return models.ProcessResult{}, fmt.Errorf("ensure site %s: %w", slug, err)
	}
	if err := r.store.SaveBaseContent(slug, pageID, base, now); err != nil {
		metrics.RefreshRuns.WithLabelValues(string(reason), "error").Inc()
		return models.ProcessResult{}, fmt.Errorf("persist base content for %s: %w", slug, err)
	}
	if err := r.store.ReconcileEvents(slug, base.Events, reason, now); err != nil {
		metrics.RefreshRuns.WithLabelValues(string(reason), "error").Inc()
		return models.ProcessResult{}, fmt.Errorf("reconcile events for %s: %w", slug, err)
	}
	if _, err := r.Rebuild(ctx, slug); err != nil {
		metrics.RefreshRuns.WithLabelValues(string(reason), "error").Inc()
		return models.ProcessResult{}, err
	}

	metrics.RefreshRuns.WithLabelValues(string(reason), "processed").Inc()
	metrics.RefreshDuration.Observe(r.now().Sub(started).Seconds())
	log.Info().Int("events", len(base.Events)).Msg("refreshed site content from remote")
	return models.ProcessedResult, nil
}
