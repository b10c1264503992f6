// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package normalize

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/howlinyuma/webesync/internal/models"
	"github.com/howlinyuma/webesync/internal/schedule"
)

// ScheduleDay normalizes one upstream schedule-shell day. A malformed day is
// dropped on its own; it never invalidates the whole schedule.
func (n *Normalizer) ScheduleDay(v any) (models.ScheduleDay, bool) {
	raw, ok := v.(map[string]any)
	if !ok {
		return models.ScheduleDay{}, false
	}
	dayLabel, ok := stringValue(raw["dayLabel"])
	if !ok {
		return models.ScheduleDay{}, false
	}
	dateLabel, ok := stringValue(raw["dateLabel"])
	if !ok {
		return models.ScheduleDay{}, false
	}
	gatesOpen := schedule.DefaultGatesTime
	if v, ok := stringValue(raw["gatesOpen"]); ok {
		gatesOpen = v
	}
	eventIds := make([]string, 0)
	for _, entry := range CoerceArray(raw["eventIds"]) {
		if id, ok := stringValue(entry); ok {
			eventIds = append(eventIds, id)
		}
	}
	return models.ScheduleDay{
		DayLabel:  dayLabel,
		DateLabel: dateLabel,
		GatesOpen: gatesOpen,
		EventIds:  eventIds,
	}, true
}

// FestivalContent normalizes a full upstream content payload. Meta fields
// fall back to the configured defaults; individual invalid events and
// schedule days are dropped silently. The returned content carries the raw
// (unfiltered) normalized event list and the validated schedule shell; the
// upcoming filter and schedule derivation are applied by the content layer
// against its own pivot time.
func (n *Normalizer) FestivalContent(raw map[string]any) (models.FestivalContent, bool) {
	if raw == nil {
		return models.FestivalContent{}, false
	}

	meta, _ := raw["meta"].(map[string]any)
	siteSlug := n.defaults.SiteSlug
	if v, ok := stringValue(meta["siteSlug"]); ok {
		siteSlug = v
	}
	siteName := n.defaults.SiteName
	if v, ok := stringValue(meta["siteName"]); ok {
		siteName = v
	}
	sourcePageID := n.defaults.SourcePageID
	if v, ok := stringValue(meta["sourcePageId"]); ok {
		sourcePageID = v
	}
	generatedAt := n.now().UTC().Format(time.RFC3339)
	if v, ok := stringValue(meta["generatedAt"]); ok {
		generatedAt = v
	}
	if siteSlug == "" || siteName == "" || sourcePageID == "" {
		return models.FestivalContent{}, false
	}

	events := make([]models.EventDetail, 0)
	for _, entry := range CoerceArray(raw["events"]) {
		record, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if detail, ok := n.EventDetail(record); ok {
			events = append(events, detail)
		}
	}

	days := make([]models.ScheduleDay, 0)
	if scheduleRaw, ok := raw["schedule"].(map[string]any); ok {
		for _, entry := range CoerceArray(scheduleRaw["days"]) {
			if day, ok := n.ScheduleDay(entry); ok {
				days = append(days, day)
			}
		}
	}

	return models.FestivalContent{
		Meta: models.IntegrationMeta{
			SiteSlug:     siteSlug,
			SiteName:     siteName,
			SourcePageID: sourcePageID,
			GeneratedAt:  generatedAt,
		},
		Hero:     normalizeHero(raw["hero"]),
		Stats:    normalizeStats(raw["stats"]),
		Events:   events,
		Schedule: models.Schedule{Days: days},
		Gallery:  normalizeGallery(raw["gallery"]),
		Sponsors: normalizeSponsors(raw["sponsors"]),
		Faqs:     normalizeFaqs(raw["faqs"]),
	}, true
}

func normalizeHero(v any) *models.HeroBlock {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	// Hero is presentational; round-trip through JSON rather than
	// field-by-field coercion.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var hero models.HeroBlock
	if err := json.Unmarshal(data, &hero); err != nil {
		return nil
	}
	return &hero
}

func normalizeStats(v any) []models.FestivalStat {
	stats := make([]models.FestivalStat, 0)
	for _, entry := range CoerceArray(v) {
		raw, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		label, ok := stringValue(raw["label"])
		if !ok {
			continue
		}
		stats = append(stats, models.FestivalStat{Label: label, Value: raw["value"]})
	}
	return stats
}

func normalizeGallery(v any) []models.ImageAsset {
	gallery := make([]models.ImageAsset, 0)
	for _, entry := range CoerceArray(v) {
		if image, ok := normalizeImage(entry); ok {
			gallery = append(gallery, image)
		}
	}
	return gallery
}

func normalizeSponsors(v any) []models.Sponsor {
	sponsors := make([]models.Sponsor, 0)
	for _, entry := range CoerceArray(v) {
		raw, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name, ok := stringValue(raw["name"])
		if !ok {
			continue
		}
		tier, _ := raw["tier"].(string)
		description, _ := raw["description"].(string)
		sponsors = append(sponsors, models.Sponsor{
			Name:        name,
			Tier:        tier,
			Description: description,
		})
	}
	return sponsors
}

func normalizeFaqs(v any) []models.FaqItem {
	faqs := make([]models.FaqItem, 0)
	for _, entry := range CoerceArray(v) {
		raw, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		question, okQ := stringValue(raw["question"])
		answer, okA := stringValue(raw["answer"])
		if !okQ || !okA {
			continue
		}
		faqs = append(faqs, models.FaqItem{Question: question, Answer: answer})
	}
	return faqs
}

// FestivalContentJSON decodes and normalizes a raw JSON document.
func (n *Normalizer) FestivalContentJSON(data []byte) (models.FestivalContent, bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.FestivalContent{}, false
	}
	return n.FestivalContent(raw)
}

// EventDetailValue normalizes an arbitrarily-typed value (as decoded from a
// webhook body) into an EventDetail.
func (n *Normalizer) EventDetailValue(v any) (models.EventDetail, bool) {
	raw, ok := v.(map[string]any)
	if !ok {
		return models.EventDetail{}, false
	}
	return n.EventDetail(raw)
}
