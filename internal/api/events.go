// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/models"
	"github.com/howlinyuma/webesync/internal/schedule"
	"github.com/howlinyuma/webesync/internal/store"
)

// eventsFeedResponse is the public feed body. GeneratedAt and Source are
// only populated when the feed was served from a live upstream fetch.
type eventsFeedResponse struct {
	Events      []models.EventDetail `json:"events"`
	GeneratedAt string               `json:"generatedAt,omitempty"`
	Source      string               `json:"source,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Events serves the public events feed. A live upstream fetch is
// preferred; when the upstream is unreachable or disabled the feed
// falls back to the persisted site content, filtered to published
// events that have not yet ended.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	slug := strings.TrimSpace(r.URL.Query().Get("site"))
	if slug == "" {
		slug = h.siteSlug
	}

	if h.fetcher != nil && h.fetcher.Enabled() {
		result, err := h.fetcher.FetchContent(r.Context(), slug)
		if err == nil {
			events := result.Content.Events
			if events == nil {
				events = []models.EventDetail{}
			}
			source := result.Content.Meta.SourcePageID
			if source == "" {
				source = "webe-api"
			}
			writeJSON(w, r, http.StatusOK, eventsFeedResponse{
				Events:      events,
				GeneratedAt: result.Content.Meta.GeneratedAt,
				Source:      source,
			})
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Str("site", slug).
			Msg("events feed falling back to persisted content")
	}

	content, _, err := h.store.Snapshot(slug)
	if errors.Is(err, store.ErrSiteNotFound) {
		writeJSON(w, r, http.StatusNotFound, eventsFeedResponse{Events: []models.EventDetail{}})
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("site", slug).Msg("events feed failed to load persisted content")
		writeJSON(w, r, http.StatusInternalServerError, eventsFeedResponse{
			Events: []models.EventDetail{},
			Error:  "Unable to load events",
		})
		return
	}

	writeJSON(w, r, http.StatusOK, eventsFeedResponse{
		Events: publishedUpcoming(content.Events, h.now()),
	})
}

// publishedUpcoming keeps published events that have not yet ended,
// sorted by start time ascending.
func publishedUpcoming(events []models.EventDetail, pivot time.Time) []models.EventDetail {
	published := make([]models.EventDetail, 0, len(events))
	for _, ev := range events {
		if resolveStatus(ev) == "published" {
			published = append(published, ev)
		}
	}
	out := schedule.FilterUpcomingEvents(published, pivot)
	if out == nil {
		out = []models.EventDetail{}
	}
	return out
}

// resolveStatus reads an event's publication status, checking the
// top-level field first and the metadata bag second. Events with no
// status at all count as published.
func resolveStatus(ev models.EventDetail) string {
	if s := strings.TrimSpace(ev.Status); s != "" {
		return strings.ToLower(s)
	}
	if ev.Metadata != nil {
		if raw, ok := ev.Metadata["status"].(string); ok {
			if s := strings.TrimSpace(raw); s != "" {
				return strings.ToLower(s)
			}
		}
	}
	return "published"
}
