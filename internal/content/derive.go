// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Package content assembles the festival content served to readers: the
// two-tier cache over the WeBeFriends API, the full-refresh orchestrator,
// and the shared rebuild that overlays live event edits onto the last base
// snapshot.
package content

import (
	"time"

	"github.com/howlinyuma/webesync/internal/models"
	"github.com/howlinyuma/webesync/internal/schedule"
)

// DefaultSiteName labels sites that have never produced a remote payload.
const DefaultSiteName = "Howlin' At The Moon Fest"

// DefaultSourcePageID is the page id used when upstream never supplied one.
const DefaultSourcePageID = "webe-source-page"

// MinimalContent is an empty but well-formed content document for a site
// that has nothing persisted yet.
func MinimalContent(siteSlug, pageID string, now time.Time) models.FestivalContent {
	if pageID == "" {
		pageID = DefaultSourcePageID
	}
	return models.FestivalContent{
		Meta: models.IntegrationMeta{
			SiteSlug:     siteSlug,
			SiteName:     DefaultSiteName,
			SourcePageID: pageID,
			GeneratedAt:  now.UTC().Format(time.RFC3339),
		},
		Stats:    []models.FestivalStat{},
		Events:   []models.EventDetail{},
		Schedule: models.Schedule{Days: []models.ScheduleDay{}},
		Gallery:  []models.ImageAsset{},
		Sponsors: []models.Sponsor{},
		Faqs:     []models.FaqItem{},
	}
}

// scheduleOptions derives gate fallbacks and empty-day shells from a content
// document's schedule. The base schedule is the authority for day labels and
// gate times even when all its events have passed.
func scheduleOptions(base models.FestivalContent) schedule.BuildOptions {
	gates := make(map[string]string, len(base.Schedule.Days))
	empty := make([]models.ScheduleDay, 0, len(base.Schedule.Days))
	for _, day := range base.Schedule.Days {
		gates[day.DayLabel] = day.GatesOpen
		empty = append(empty, models.ScheduleDay{
			DayLabel:  day.DayLabel,
			DateLabel: day.DateLabel,
			GatesOpen: day.GatesOpen,
			EventIds:  []string{},
		})
	}
	return schedule.BuildOptions{FallbackGates: gates, IncludeEmptyDays: empty}
}

// Derive recomputes the upcoming event list and day-by-day schedule of a
// content document against the given pivot time. Cached and fallback content
// pass through here on every read so "upcoming" always reflects wall-clock
// time, not fetch time.
func Derive(base models.FestivalContent, pivot time.Time) models.FestivalContent {
	derived := base.Clone()
	upcoming := schedule.FilterUpcomingEvents(base.Events, pivot)
	derived.Events = upcoming
	derived.Schedule = schedule.BuildScheduleFromEvents(upcoming, scheduleOptions(base))
	return derived
}
