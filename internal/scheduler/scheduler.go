// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Package scheduler runs the nightly full content refresh at a fixed
// wall-clock time in the festival's timezone.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/models"
)

// Refresher is the slice of the content pipeline the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context, slug string, reason models.RefreshReason, correlationID string) (models.ProcessResult, error)
}

// Config configures the nightly refresh.
type Config struct {
	SiteSlug string

	// RefreshTime is an HH:MM wall-clock time in Timezone.
	RefreshTime string
	Timezone    string
}

// Scheduler triggers one refresh per day. It implements suture.Service;
// a panic or error in a run surfaces to the supervisor, which restarts
// the loop with backoff.
type Scheduler struct {
	refresher Refresher
	siteSlug  string
	hour      int
	minute    int
	location  *time.Location

	// now and sleep are swapped out by tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New validates the schedule and builds a Scheduler.
func New(refresher Refresher, cfg Config) (*Scheduler, error) {
	at, err := time.Parse("15:04", cfg.RefreshTime)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh time %q: %w", cfg.RefreshTime, err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return &Scheduler{
		refresher: refresher,
		siteSlug:  cfg.SiteSlug,
		hour:      at.Hour(),
		minute:    at.Minute(),
		location:  loc,
		now:       time.Now,
		sleep:     sleepContext,
	}, nil
}

// NextRun returns the first scheduled instant strictly after from.
func (s *Scheduler) NextRun(from time.Time) time.Time {
	local := from.In(s.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Serve implements suture.Service. It blocks until ctx is canceled.
func (s *Scheduler) Serve(ctx context.Context) error {
	log := logging.With().Str("component", "scheduler").Str("site", s.siteSlug).Logger()

	for {
		next := s.NextRun(s.now())
		wait := next.Sub(s.now())
		log.Info().Time("next_run", next).Msg("scheduled nightly refresh")

		if err := s.sleep(ctx, wait); err != nil {
			return err
		}

		s.runOnce(ctx, &log)
	}
}

// runOnce executes a single scheduled refresh. Failures are logged, not
// returned: a broken upstream should not crash-loop the scheduler.
func (s *Scheduler) runOnce(ctx context.Context, log *zerolog.Logger) {
	correlationID := "scheduler-" + logging.GenerateCorrelationID()
	result, err := s.refresher.Refresh(ctx, s.siteSlug, models.RefreshScheduler, correlationID)
	if err != nil {
		log.Error().Err(err).Str("correlation_id", correlationID).Msg("nightly refresh failed")
		return
	}
	if !result.Processed() {
		log.Warn().Str("correlation_id", correlationID).Str("reason", result.Reason).Msg("nightly refresh skipped")
		return
	}
	log.Info().Str("correlation_id", correlationID).Msg("nightly refresh completed")
}

// String implements fmt.Stringer for supervisor logging.
func (s *Scheduler) String() string {
	return "refresh-scheduler"
}

// sleepContext waits for d or until ctx is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		d = time.Nanosecond
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
