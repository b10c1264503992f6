// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package api

import "net/http"

// Health is the liveness probe. It reports process health only; the
// upstream API being down is a degraded-but-serving condition, not an
// unhealthy one, because the cache chain keeps answering.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
