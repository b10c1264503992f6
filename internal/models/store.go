// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package models

import "time"

// EventAction is the kind of change a webhook delivery describes.
type EventAction string

const (
	ActionCreated EventAction = "created"
	ActionUpdated EventAction = "updated"
	ActionDeleted EventAction = "deleted"
)

// ValidEventAction reports whether s names a recognized webhook action.
func ValidEventAction(s string) bool {
	switch EventAction(s) {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

// RefreshReason records why a full content refresh ran. Reconciled event
// documents are tagged with it (plus a "-removed" suffix for tombstones).
type RefreshReason string

const (
	RefreshScheduler RefreshReason = "scheduler"
	RefreshManual    RefreshReason = "manual"
	RefreshBootstrap RefreshReason = "bootstrap"
	RefreshWebhook   RefreshReason = "webhook"
)

// StoredEventDoc is the per-event document persisted under a site. Deleted
// events stay as tombstones so late webhook retries can be detected as stale.
//
// LastTriggeredAt is monotonic per event: an incoming action whose trigger
// timestamp is not strictly greater is rejected without mutation.
type StoredEventDoc struct {
	EventID         string       `json:"eventId"`
	Data            *EventDetail `json:"data"`
	Deleted         bool         `json:"deleted"`
	PreviousData    *EventDetail `json:"previousData"`
	LastAction      string       `json:"lastAction,omitempty"`
	LastTriggeredAt time.Time    `json:"lastTriggeredAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// SiteDoc is the root document persisted per site slug. BaseContent is the
// last full remote snapshot; Content is BaseContent overlaid with live
// per-event edits and a recomputed schedule.
type SiteDoc struct {
	SiteSlug                 string           `json:"siteSlug"`
	PageID                   string           `json:"pageId,omitempty"`
	BaseContent              *FestivalContent `json:"baseContent,omitempty"`
	Content                  *FestivalContent `json:"content,omitempty"`
	EventCount               int              `json:"eventCount"`
	LastRefreshAt            time.Time        `json:"lastRefreshAt"`
	LastWebhookAction        string           `json:"lastWebhookAction,omitempty"`
	LastWebhookCorrelationID string           `json:"lastWebhookCorrelationId,omitempty"`
	LastWebhookTriggerAt     time.Time        `json:"lastWebhookTriggerAt"`
	UpdatedAt                time.Time        `json:"updatedAt"`
}

// EventsChangedPayload is the body of an events.changed webhook delivery.
// Event and PreviousEvent stay untyped until normalization.
type EventsChangedPayload struct {
	Type          string `json:"type,omitempty"`
	Action        string `json:"action,omitempty"`
	PageID        string `json:"pageId,omitempty"`
	SiteSlug      string `json:"siteSlug,omitempty"`
	EventID       string `json:"eventId,omitempty"`
	TriggeredAt   string `json:"triggeredAt,omitempty"`
	Event         any    `json:"event,omitempty"`
	PreviousEvent any    `json:"previousEvent,omitempty"`
}

// ProcessStatus distinguishes applied mutations from benign no-ops.
type ProcessStatus string

const (
	StatusProcessed ProcessStatus = "processed"
	StatusSkipped   ProcessStatus = "skipped"
)

// Skip reasons reported by webhook processing and refresh.
const (
	ReasonMissingEventID    = "missing-event-id"
	ReasonInvalidEvent      = "invalid-event"
	ReasonStaleEvent        = "stale-event"
	ReasonRemoteFetchFailed = "remote-fetch-failed"
)

// ProcessResult is the outcome of a webhook or refresh operation. Skips are
// not errors; Reason says why nothing was mutated.
type ProcessResult struct {
	Status ProcessStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// Processed reports whether the operation applied a mutation.
func (r ProcessResult) Processed() bool {
	return r.Status == StatusProcessed
}

// Skipped builds a skip result with the given reason.
func Skipped(reason string) ProcessResult {
	return ProcessResult{Status: StatusSkipped, Reason: reason}
}

// Processed is the successful ProcessResult.
var ProcessedResult = ProcessResult{Status: StatusProcessed}
