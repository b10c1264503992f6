// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Package webe talks to the WeBeFriends content API. The upstream returns
// loosely-typed site payloads; every response is normalized before callers
// see it. All fetches go through a circuit breaker so a flapping upstream
// stops burning the full request timeout on every cache miss.
package webe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/metrics"
	"github.com/howlinyuma/webesync/internal/models"
	"github.com/howlinyuma/webesync/internal/normalize"
)

// Typed failures callers branch on. ErrNoAPIKey means the client is not
// configured for remote fetches at all and never touches the network.
var (
	ErrNoAPIKey     = errors.New("webe: no API key configured")
	ErrUnauthorized = errors.New("webe: unauthorized")
	ErrNotFound     = errors.New("webe: site not found")
	ErrUpstream     = errors.New("webe: upstream error")
	ErrBadPayload   = errors.New("webe: payload failed normalization")
)

const (
	// Upstream calls are treated as failed after this long, not retried.
	defaultTimeout = 9 * time.Second

	defaultUserAgent = "webesync/1.0 (+https://github.com/howlinyuma/webesync)"

	// maxResponseBytes bounds how much of an upstream response is read.
	maxResponseBytes = 4 << 20
)

// Config configures the WeBeFriends API client.
type Config struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
}

// FetchResult is one normalized upstream response plus its caching directives.
type FetchResult struct {
	Content     models.FestivalContent
	MaxAge      time.Duration
	StaleWindow time.Duration
	FetchedAt   time.Time
}

// Client fetches and normalizes site content from the WeBeFriends API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	normalizer *normalize.Normalizer
	breaker    *gobreaker.CircuitBreaker[*FetchResult]
	now        func() time.Time
}

// New builds a Client. The circuit breaker opens after 60% failures over a
// minimum of 5 requests and probes again after 30 seconds, so refresh and
// cache-miss traffic short-circuits during an upstream outage.
func New(cfg Config, normalizer *normalize.Normalizer) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	cbName := "webefriends-api"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[*FetchResult](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Warn().Str("from", fromStr).Str("to", toStr).Msg("remote fetch circuit state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		normalizer: normalizer,
		breaker:    breaker,
		now:        time.Now,
	}
}

// SetClock overrides the client's clock. Used by tests.
func (c *Client) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// Enabled reports whether remote fetches are configured at all.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != "" && c.cfg.BaseURL != ""
}

// FetchContent fetches GET {base}/{slug} and returns the normalized payload
// with parsed cache directives. A missing API key fails fast with ErrNoAPIKey
// and does not count against the circuit breaker.
func (c *Client) FetchContent(ctx context.Context, slug string) (*FetchResult, error) {
	if !c.Enabled() {
		metrics.RemoteFetchErrors.WithLabelValues("no_api_key").Inc()
		return nil, ErrNoAPIKey
	}

	start := c.now()
	result, err := c.breaker.Execute(func() (*FetchResult, error) {
		return c.fetch(ctx, slug)
	})
	elapsed := c.now().Sub(start)

	if err != nil {
		metrics.RemoteFetchDuration.WithLabelValues("error").Observe(elapsed.Seconds())
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Ctx(ctx).Warn().Err(err).Str("site", slug).Msg("remote fetch rejected by open circuit")
			return nil, fmt.Errorf("%w: %s", ErrUpstream, err)
		}
		return nil, err
	}
	metrics.RemoteFetchDuration.WithLabelValues("success").Observe(elapsed.Seconds())
	return result, nil
}

func (c *Client) fetch(ctx context.Context, slug string) (*FetchResult, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + slug

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", slug, err)
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RemoteFetchErrors.WithLabelValues("network").Inc()
		return nil, fmt.Errorf("fetch %s: %w", slug, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.RemoteFetchErrors.WithLabelValues("unauthorized").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		metrics.RemoteFetchErrors.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.RemoteFetchErrors.WithLabelValues("upstream").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.RemoteFetchErrors.WithLabelValues("network").Inc()
		return nil, fmt.Errorf("read response for %s: %w", slug, err)
	}

	content, ok := c.normalizer.FestivalContentJSON(body)
	if !ok {
		metrics.RemoteFetchErrors.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("%w: site %s", ErrBadPayload, slug)
	}

	maxAge, staleWindow := ParseCacheControl(resp.Header.Get("Cache-Control"))
	return &FetchResult{
		Content:     content,
		MaxAge:      maxAge,
		StaleWindow: staleWindow,
		FetchedAt:   c.now().UTC(),
	}, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
