// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the sync pipeline:
// - remote WeBeFriends fetches and circuit breaker state
// - content cache tier resolution
// - webhook deliveries and refresh runs
// - visitor counter and HTTP surface

var (
	// Remote API metrics
	RemoteFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webe_remote_fetch_duration_seconds",
			Help:    "Duration of WeBeFriends content fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"}, // "success", "error"
	)

	RemoteFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webe_remote_fetch_errors_total",
			Help: "Total WeBeFriends fetch failures by kind",
		},
		[]string{"kind"}, // "no_api_key", "unauthorized", "not_found", "upstream", "decode", "network"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "webe_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webe_circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Content cache metrics
	CacheResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webe_content_cache_resolutions_total",
			Help: "Content cache lookups by resolving tier",
		},
		[]string{"tier"}, // "memory", "remote", "snapshot", "stale", "fallback"
	)

	// Webhook metrics
	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webe_webhook_deliveries_total",
			Help: "Webhook deliveries by action and outcome",
		},
		[]string{"action", "outcome"}, // outcome: "processed", "skipped", "error"
	)

	WebhookSignatureFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webe_webhook_signature_failures_total",
			Help: "Webhook deliveries rejected for a bad or missing signature",
		},
	)

	// Refresh metrics
	RefreshRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webe_refresh_runs_total",
			Help: "Full content refreshes by reason and outcome",
		},
		[]string{"reason", "outcome"},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webe_refresh_duration_seconds",
			Help:    "Duration of full content refreshes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Visitor metrics
	VisitorRegistrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webe_visitor_registrations_total",
			Help: "Visitor counter registrations",
		},
		[]string{"outcome"}, // "new", "repeat", "error"
	)

	// HTTP surface metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webe_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webe_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}
