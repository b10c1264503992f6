// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/models"
	"github.com/howlinyuma/webesync/internal/schedule"
	"github.com/howlinyuma/webesync/internal/store"
)

// Store is the persistence surface the refresh pipeline writes through.
// *store.Store satisfies it; tests may substitute fakes.
type Store interface {
	EnsureSite(slug, pageID string, seed models.FestivalContent) (models.FestivalContent, error)
	GetSite(slug string) (*models.SiteDoc, error)
	LiveEvents(slug string) ([]models.EventDetail, error)
	SaveBaseContent(slug, pageID string, content models.FestivalContent, fetchedAt time.Time) error
	SaveMergedContent(slug string, content models.FestivalContent, eventCount int) error
	ReconcileEvents(slug string, events []models.EventDetail, reason models.RefreshReason, triggeredAt time.Time) error
}

// Rebuild overlays the site's live event documents onto its base content,
// recomputes the upcoming filter and schedule at the current time, and
// persists the result as the site's merged content. Both the webhook
// processor and the refresh orchestrator end with this step.
func (r *Refresher) Rebuild(ctx context.Context, slug string) (models.FestivalContent, error) {
	now := r.now()

	var base models.FestivalContent
	site, err := r.store.GetSite(slug)
	switch {
	case err == nil && site.BaseContent != nil:
		base = site.BaseContent.Clone()
	case err == nil || errors.Is(err, store.ErrSiteNotFound):
		base, err = r.store.EnsureSite(slug, "", MinimalContent(slug, "", now))
		if err != nil {
			return models.FestivalContent{}, fmt.Errorf("ensure site %s: %w", slug, err)
		}
	default:
		return models.FestivalContent{}, fmt.Errorf("load site %s: %w", slug, err)
	}

	events, err := r.store.LiveEvents(slug)
	if err != nil {
		return models.FestivalContent{}, fmt.Errorf("load live events for %s: %w", slug, err)
	}

	upcoming := schedule.FilterUpcomingEvents(events, now)
	merged := base.Clone()
	merged.Events = upcoming
	merged.Schedule = schedule.BuildScheduleFromEvents(upcoming, scheduleOptions(base))
	merged.Meta.GeneratedAt = now.UTC().Format(time.RFC3339)

	if err := r.store.SaveMergedContent(slug, merged, len(upcoming)); err != nil {
		return models.FestivalContent{}, fmt.Errorf("persist merged content for %s: %w", slug, err)
	}
	if r.cache != nil {
		r.cache.Invalidate(slug)
	}
	logging.Ctx(ctx).Debug().Str("site", slug).Int("events", len(upcoming)).Msg("rebuilt merged content")
	return merged, nil
}
