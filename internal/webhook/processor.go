// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package webhook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/howlinyuma/webesync/internal/content"
	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/metrics"
	"github.com/howlinyuma/webesync/internal/models"
	"github.com/howlinyuma/webesync/internal/normalize"
	"github.com/howlinyuma/webesync/internal/store"
)

// EventStore is the transactional surface the processor mutates.
// *store.Store satisfies it.
type EventStore interface {
	EnsureSite(slug, pageID string, seed models.FestivalContent) (models.FestivalContent, error)
	ApplyEventUpsert(slug string, event models.EventDetail, meta store.WebhookMeta, triggeredAt time.Time) (bool, error)
	ApplyEventTombstone(slug, eventID string, previous *models.EventDetail, meta store.WebhookMeta, triggeredAt time.Time) (bool, error)
}

// Rebuilder recomputes a site's merged content after an applied mutation.
type Rebuilder interface {
	Rebuild(ctx context.Context, slug string) (models.FestivalContent, error)
}

// Delivery carries the per-request context resolved by the HTTP boundary.
type Delivery struct {
	CorrelationID string
	TriggeredAt   time.Time
	Action        models.EventAction
	SiteSlug      string
	PageID        string
}

// Processor applies events.changed payloads to the document store.
type Processor struct {
	store      EventStore
	rebuilder  Rebuilder
	normalizer *normalize.Normalizer
	now        func() time.Time
}

// NewProcessor builds a Processor.
func NewProcessor(st EventStore, rebuilder Rebuilder, normalizer *normalize.Normalizer) *Processor {
	return &Processor{
		store:      st,
		rebuilder:  rebuilder,
		normalizer: normalizer,
		now:        time.Now,
	}
}

// SetClock overrides the processor's clock. Used by tests.
func (p *Processor) SetClock(now func() time.Time) {
	if now != nil {
		p.now = now
	}
}

// resolveEventID picks the event id for a delivery. The explicit top-level
// eventId always wins; an embedded event's id is only a fallback, so a
// mismatched pair follows the envelope, not the payload.
func resolveEventID(payload models.EventsChangedPayload) string {
	if id := strings.TrimSpace(payload.EventID); id != "" {
		return id
	}
	if event, ok := payload.Event.(map[string]any); ok {
		if id, ok := event["id"].(string); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

// ProcessEventsChanged runs the per-event state machine for one delivery:
// none -> active (created), active -> active (updated), active -> tombstoned
// (deleted). A trigger timestamp that is not strictly newer than the stored
// one makes the delivery a stale no-op. Every applied mutation ends with a
// merged-content rebuild.
func (p *Processor) ProcessEventsChanged(ctx context.Context, payload models.EventsChangedPayload, delivery Delivery) (models.ProcessResult, error) {
	log := logging.Ctx(ctx).With().
		Str("site", delivery.SiteSlug).
		Str("action", string(delivery.Action)).
		Str("webhook_correlation_id", delivery.CorrelationID).
		Logger()

	eventID := resolveEventID(payload)
	if eventID == "" {
		log.Warn().Msg("webhook delivery missing event id")
		metrics.WebhookDeliveries.WithLabelValues(string(delivery.Action), "skipped").Inc()
		return models.Skipped(models.ReasonMissingEventID), nil
	}

	seed := content.MinimalContent(delivery.SiteSlug, delivery.PageID, p.now())
	if _, err := p.store.EnsureSite(delivery.SiteSlug, delivery.PageID, seed); err != nil {
		metrics.WebhookDeliveries.WithLabelValues(string(delivery.Action), "error").Inc()
		return models.ProcessResult{}, fmt.Errorf("ensure site %s: %w", delivery.SiteSlug, err)
	}

	meta := store.WebhookMeta{
		Action:        delivery.Action,
		CorrelationID: delivery.CorrelationID,
		PageID:        delivery.PageID,
	}

	if delivery.Action == models.ActionDeleted {
		var previous *models.EventDetail
		if detail, ok := p.normalizer.EventDetailValue(payload.PreviousEvent); ok {
			previous = &detail
		}
		applied, err := p.store.ApplyEventTombstone(delivery.SiteSlug, eventID, previous, meta, delivery.TriggeredAt)
		if err != nil {
			metrics.WebhookDeliveries.WithLabelValues(string(delivery.Action), "error").Inc()
			return models.ProcessResult{}, fmt.Errorf("tombstone event %s: %w", eventID, err)
		}
		if !applied {
			log.Info().Str("event_id", eventID).Msg("skipped stale deletion")
			metrics.WebhookDeliveries.WithLabelValues(string(delivery.Action), "skipped").Inc()
			return models.Skipped(models.ReasonStaleEvent), nil
		}
		if _, err := p.rebuilder.Rebuild(ctx, delivery.SiteSlug); err != nil {
			metrics.WebhookDeliveries.WithLabelValues(string(delivery.Action), "error").Inc()
			return models.ProcessResult{}, err
		}
		log.Info().Str("event_id", eventID).Msg("deleted event")
		metrics.WebhookDeliveries.WithLabelValues(string(delivery.Action), "processed").Inc()
		return models.ProcessedResult, nil
	}

	detail, ok := p.normalizer.EventDetailValue(payload.Event)
	if !ok {
		log.Warn().Str("event_id", eventID).Msg("webhook event payload failed normalization")
		metrics.WebhookDeliveries.WithLabelValues(string(delivery.Action), "skipped").Inc()
		return models.Skipped(models.ReasonInvalidEvent), nil
	}

	applied, err := p.store.ApplyEventUpsert(delivery.SiteSlug, detail, meta, delivery.TriggeredAt)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues(string(delivery.Action), "error").Inc()
		return models.ProcessResult{}, fmt.Errorf("upsert event %s: %w", detail.ID, err)
	}
	if !applied {
		log.Info().Str("event_id", detail.ID).Msg("skipped stale upsert")
		metrics.WebhookDeliveries.WithLabelValues(string(delivery.Action), "skipped").Inc()
		return models.Skipped(models.ReasonStaleEvent), nil
	}
	if _, err := p.rebuilder.Rebuild(ctx, delivery.SiteSlug); err != nil {
		metrics.WebhookDeliveries.WithLabelValues(string(delivery.Action), "error").Inc()
		return models.ProcessResult{}, err
	}
	log.Info().Str("event_id", detail.ID).Msg("upserted event")
	metrics.WebhookDeliveries.WithLabelValues(string(delivery.Action), "processed").Inc()
	return models.ProcessedResult, nil
}
