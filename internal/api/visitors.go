// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package api

import (
	"net/http"

	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/metrics"
	"github.com/howlinyuma/webesync/internal/visitors"
)

// VisitorCount registers the caller as a visitor and returns the global
// unique-visitor total. Repeat visits on the same day do not increment.
func (h *Handlers) VisitorCount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	hash := visitors.Identify(r)
	day := visitors.DayKey(h.now())

	total, newVisitor, err := h.store.RegisterVisitor(hash, day)
	if err != nil {
		metrics.VisitorRegistrations.WithLabelValues("error").Inc()
		logging.Ctx(r.Context()).Error().Err(err).Msg("visitor registration failed")
		writeJSON(w, r, http.StatusInternalServerError, map[string]string{
			"error": "Unable to fetch visitor count",
		})
		return
	}

	outcome := "repeat"
	if newVisitor {
		outcome = "new"
	}
	metrics.VisitorRegistrations.WithLabelValues(outcome).Inc()

	writeJSON(w, r, http.StatusOK, map[string]int64{"count": total})
}
