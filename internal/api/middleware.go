// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/metrics"
)

// correlationHeaders are checked in order; the platform's own header
// wins over generic proxy tracing headers.
var correlationHeaders = []string{
	"WeBe-Correlation-Id",
	"X-Request-Id",
	"X-Correlation-Id",
}

// CorrelationID resolves or generates a correlation ID for the request,
// stores it in the logging context, and echoes it back to the caller.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		for _, header := range correlationHeaders {
			if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
				id = v
				break
			}
		}
		if id == "" {
			id = logging.GenerateCorrelationID()
		}

		w.Header().Set("X-Correlation-Id", id)
		ctx := logging.ContextWithCorrelationID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.ResponseWriter.Write(b)
}

// RequestLogger logs one line per request and feeds the HTTP metrics.
// The metrics path label uses the chi route pattern, not the raw URL,
// to keep the label cardinality bounded.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = r.URL.Path
		}
		elapsed := time.Since(start)

		metrics.RecordHTTPRequest(r.Method, pattern, status, elapsed)
		logging.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", elapsed).
			Msg("http request")
	})
}
