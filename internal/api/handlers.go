// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Package api exposes the public HTTP surface: the events feed, the
// webhook receiver, the visitor counter, and the operational endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/models"
	"github.com/howlinyuma/webesync/internal/webe"
	"github.com/howlinyuma/webesync/internal/webhook"
)

// ContentFetcher is the slice of the remote client the events feed uses.
type ContentFetcher interface {
	Enabled() bool
	FetchContent(ctx context.Context, slug string) (*webe.FetchResult, error)
}

// SiteStore is the slice of the store the handlers read and write.
type SiteStore interface {
	Snapshot(slug string) (models.FestivalContent, time.Time, error)
	RegisterVisitor(hash, day string) (int64, bool, error)
}

// DeliveryProcessor applies one webhook delivery.
type DeliveryProcessor interface {
	ProcessEventsChanged(ctx context.Context, payload models.EventsChangedPayload, delivery webhook.Delivery) (models.ProcessResult, error)
}

// RefreshRunner triggers a full remote refresh.
type RefreshRunner interface {
	Refresh(ctx context.Context, slug string, reason models.RefreshReason, correlationID string) (models.ProcessResult, error)
}

// Handlers holds the endpoint implementations and their dependencies.
type Handlers struct {
	fetcher   ContentFetcher
	store     SiteStore
	processor DeliveryProcessor
	refresher RefreshRunner

	siteSlug      string
	pageID        string
	webhookSecret string
	now           func() time.Time
}

// HandlerOptions configures a Handlers value.
type HandlerOptions struct {
	SiteSlug      string
	PageID        string
	WebhookSecret string

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// NewHandlers wires the endpoint implementations.
func NewHandlers(fetcher ContentFetcher, st SiteStore, processor DeliveryProcessor, refresher RefreshRunner, opts HandlerOptions) *Handlers {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		fetcher:       fetcher,
		store:         st,
		processor:     processor,
		refresher:     refresher,
		siteSlug:      opts.SiteSlug,
		pageID:        opts.PageID,
		webhookSecret: opts.WebhookSecret,
		now:           now,
	}
}

// writeJSON writes a JSON body with the given status. Encoding failures
// are logged rather than surfaced; the status line has already left.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response body")
	}
}

// writeText writes a short plain-text body with the given status.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
