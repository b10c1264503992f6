// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/metrics"
	"github.com/howlinyuma/webesync/internal/models"
	"github.com/howlinyuma/webesync/internal/webhook"
)

// Webhook headers sent by the WeBeFriends platform.
const (
	headerSignature   = "WeBe-Signature"
	headerEventAction = "WeBe-Event-Action"
	headerSiteSlug    = "WeBe-Site-Slug"
)

// maxWebhookBody bounds the raw body read for signature verification.
const maxWebhookBody = 1 << 20

// Webhook receives events.changed deliveries. The HMAC signature is
// verified over the exact raw body before anything is parsed; a
// delivery that fails verification never touches state.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeText(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	if !webhook.VerifySignature(rawBody, r.Header.Get(headerSignature), h.webhookSecret) {
		metrics.WebhookSignatureFailures.Inc()
		logging.Ctx(r.Context()).Warn().Msg("rejected webhook with invalid signature")
		writeText(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var payload models.EventsChangedPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("rejected unparsable webhook body")
		writeText(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	correlationID := logging.CorrelationIDFromContext(r.Context())
	delivery := webhook.Delivery{
		CorrelationID: correlationID,
		TriggeredAt:   webhook.ParseTriggeredAt(payload.TriggeredAt, h.now()),
		Action:        webhook.CoerceAction(r.Header.Get(headerEventAction), payload.Action),
		SiteSlug:      h.resolveSiteSlug(payload, r),
		PageID:        payload.PageID,
	}

	log := logging.Ctx(r.Context()).With().
		Str("site", delivery.SiteSlug).
		Str("action", string(delivery.Action)).
		Logger()
	log.Info().Msg("received events.changed webhook")

	result, err := h.processor.ProcessEventsChanged(r.Context(), payload, delivery)
	if err != nil {
		log.Error().Err(err).Msg("webhook processing failed")
		writeText(w, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	if result.Processed() {
		// Re-fetch from the upstream so the stored base snapshot catches
		// up with whatever change triggered the webhook. Failures here do
		// not fail the delivery; the per-event mutation already landed.
		if h.refresher != nil {
			if _, err := h.refresher.Refresh(r.Context(), delivery.SiteSlug, models.RefreshWebhook, correlationID); err != nil {
				log.Warn().Err(err).Msg("post-webhook refresh failed")
			}
		}
		writeText(w, http.StatusAccepted, "accepted")
		return
	}

	reason := result.Reason
	if reason == "" {
		reason = "noop"
	}
	writeText(w, http.StatusOK, reason)
}

// resolveSiteSlug picks the site a delivery targets: payload field,
// then header, then the configured default.
func (h *Handlers) resolveSiteSlug(payload models.EventsChangedPayload, r *http.Request) string {
	if slug := strings.TrimSpace(payload.SiteSlug); slug != "" {
		return slug
	}
	if slug := strings.TrimSpace(r.Header.Get(headerSiteSlug)); slug != "" {
		return slug
	}
	return h.siteSlug
}
