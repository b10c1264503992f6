// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	// RateLimit is requests per RateWindow per client IP. Zero disables
	// rate limiting, which only makes sense in tests.
	RateLimit  int
	RateWindow time.Duration
}

// NewRouter assembles the HTTP surface. The feed and counter endpoints
// are browser-facing and served with permissive CORS; the webhook is
// machine-to-machine and protected by its signature instead.
func NewRouter(h *Handlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(CorrelationID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Use(RequestLogger)
	if opts.RateLimit > 0 {
		window := opts.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(httprate.LimitByIP(opts.RateLimit, window))
	}

	r.Get("/events", h.Events)
	r.Get("/visitor-count", h.VisitorCount)

	// Registered for all methods: the handler answers 405 itself so
	// non-POST probes get the Allow header the platform's delivery
	// checker expects.
	r.Handle("/webhook", http.HandlerFunc(h.Webhook))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
