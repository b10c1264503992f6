// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package normalize

import (
	"strings"

	"github.com/howlinyuma/webesync/internal/models"
)

// EventDetail normalizes one raw event record. The second return value is
// false when any required field (id, title, stage, dayLabel, area, start,
// end) is missing or the image src is empty; such records must be dropped,
// never partially stored.
func (n *Normalizer) EventDetail(raw map[string]any) (models.EventDetail, bool) {
	if raw == nil {
		return models.EventDetail{}, false
	}

	id, okID := stringValue(raw["id"])
	title, okTitle := stringValue(raw["title"])
	stage, okStage := stringValue(raw["stage"])
	dayLabel, okDay := stringValue(raw["dayLabel"])
	area, okArea := stringValue(raw["area"])
	start, okStart := stringValue(raw["start"])
	end, okEnd := stringValue(raw["end"])
	if !okID || !okTitle || !okStage || !okDay || !okArea || !okStart || !okEnd {
		return models.EventDetail{}, false
	}

	image, ok := normalizeImage(raw["image"])
	if !ok {
		return models.EventDetail{}, false
	}

	detail := models.EventDetail{
		ID:       id,
		Title:    title,
		Stage:    stage,
		DayLabel: dayLabel,
		Area:     area,
		Start:    start,
		End:      end,
		Image:    image,
		Tags:     normalizeTags(raw["tags"]),
	}
	if description, ok := raw["description"].(string); ok {
		detail.Description = description
	}
	if slug, ok := stringValue(raw["slug"]); ok {
		detail.Slug = strings.TrimSpace(slug)
	}
	if gates, ok := stringValue(raw["gatesOpenAt"]); ok {
		detail.GatesOpenAt = strings.TrimSpace(gates)
	}
	// Upstream sends the short date label under "date".
	if date, ok := stringValue(raw["date"]); ok {
		detail.DateLabel = strings.TrimSpace(date)
	}
	if recurrence, present := raw["recurrence"]; present && recurrence != nil {
		detail.Recurrence = recurrence
	}

	metadata := map[string]any{}
	if meta, ok := raw["metadata"].(map[string]any); ok {
		for k, v := range meta {
			metadata[k] = v
		}
	}
	for key, value := range raw {
		if _, known := eventKnownKeys[key]; known {
			continue
		}
		if value == nil {
			continue
		}
		metadata[key] = value
	}
	if len(metadata) > 0 {
		detail.Metadata = metadata
	}

	return detail, true
}

func normalizeImage(v any) (models.ImageAsset, bool) {
	raw, ok := v.(map[string]any)
	if !ok {
		return models.ImageAsset{}, false
	}
	src, ok := stringValue(raw["src"])
	if !ok {
		return models.ImageAsset{}, false
	}
	alt, _ := raw["alt"].(string)
	return models.ImageAsset{Src: src, Alt: alt}, true
}

func normalizeTags(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return []string{}
	}
	tags := make([]string, 0, len(raw))
	for _, entry := range raw {
		s, ok := entry.(string)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
