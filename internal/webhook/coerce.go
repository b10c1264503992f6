// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package webhook

import (
	"strings"
	"time"

	"github.com/howlinyuma/webesync/internal/models"
	"github.com/howlinyuma/webesync/internal/schedule"
)

// CoerceAction resolves a delivery's action. An explicit header value wins
// over the body field; anything unrecognized falls back to "updated".
func CoerceAction(headerValue, bodyValue string) models.EventAction {
	if headerValue != "" {
		lowered := strings.ToLower(strings.TrimSpace(headerValue))
		if models.ValidEventAction(lowered) {
			return models.EventAction(lowered)
		}
	}
	if models.ValidEventAction(bodyValue) {
		return models.EventAction(bodyValue)
	}
	return models.ActionUpdated
}

// ParseTriggeredAt parses a delivery's trigger timestamp, falling back to
// the receipt time when absent or unparsable.
func ParseTriggeredAt(value string, fallback time.Time) time.Time {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	if t, ok := schedule.ParseEventTime(value); ok {
		return t
	}
	return fallback
}
