// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Package schedule derives the day-by-day festival schedule from a flat list
// of events. All functions are pure: the pivot time is a parameter and every
// returned event is a deep copy of its input.
package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/howlinyuma/webesync/internal/models"
)

// DefaultGatesTime is the last-resort gate-open time when neither an event
// nor the fallback lookup provides one.
const DefaultGatesTime = "10:00 AM"

// eventTimeLayouts are the timestamp shapes the upstream API has been seen
// to emit. RFC3339 with offset is canonical; the rest are tolerated.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseEventTime parses an event timestamp. Returns false for anything that
// does not resolve to a concrete instant.
func ParseEventTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FilterUpcomingEvents retains only events whose end is strictly after pivot
// and whose start and end both parse, sorted ascending by start. Events with
// malformed timestamps are dropped silently.
func FilterUpcomingEvents(events []models.EventDetail, pivot time.Time) []models.EventDetail {
	type timed struct {
		event models.EventDetail
		start time.Time
	}
	kept := make([]timed, 0, len(events))
	for _, ev := range events {
		start, okStart := ParseEventTime(ev.Start)
		end, okEnd := ParseEventTime(ev.End)
		if !okStart || !okEnd {
			continue
		}
		if !end.After(pivot) {
			continue
		}
		kept = append(kept, timed{event: ev.Clone(), start: start})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].start.Before(kept[j].start)
	})
	out := make([]models.EventDetail, len(kept))
	for i, entry := range kept {
		out[i] = entry.event
	}
	return out
}

// BuildOptions tunes schedule derivation.
type BuildOptions struct {
	// FallbackGates maps an ISO date key ("2025-10-18") or a day label
	// ("Friday") to a gate-open time. ISO keys win over day labels.
	FallbackGates map[string]string

	// IncludeEmptyDays are schedule-shell days appended (with empty
	// EventIds) when grouping produced no day with the same DayLabel. This
	// keeps a day visible even after its last event ends.
	IncludeEmptyDays []models.ScheduleDay
}

// BuildScheduleFromEvents groups events by calendar date of their start time,
// orders each group chronologically, resolves a gate-open time per day, and
// orders days by date ascending.
func BuildScheduleFromEvents(events []models.EventDetail, opts BuildOptions) models.Schedule {
	type entry struct {
		event models.EventDetail
		start time.Time
	}
	type group struct {
		dayLabel string
		date     time.Time
		items    []entry
	}

	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, ev := range events {
		start, ok := ParseEventTime(ev.Start)
		if !ok {
			continue
		}
		key := isoDateKey(start)
		g, exists := groups[key]
		if !exists {
			label := ev.DayLabel
			if strings.TrimSpace(label) == "" {
				label = start.Weekday().String()
			}
			g = &group{dayLabel: label, date: start}
			groups[key] = g
			order = append(order, key)
		}
		g.items = append(g.items, entry{event: ev.Clone(), start: start})
	}

	sort.Slice(order, func(i, j int) bool {
		return groups[order[i]].date.Before(groups[order[j]].date)
	})

	days := make([]models.ScheduleDay, 0, len(order)+len(opts.IncludeEmptyDays))
	for _, key := range order {
		g := groups[key]
		sort.SliceStable(g.items, func(i, j int) bool {
			return g.items[i].start.Before(g.items[j].start)
		})
		eventIds := make([]string, len(g.items))
		gatesCandidates := make([]string, len(g.items))
		for i, item := range g.items {
			eventIds[i] = item.event.ID
			gatesCandidates[i] = item.event.GatesOpenAt
		}
		days = append(days, models.ScheduleDay{
			DayLabel:  g.dayLabel,
			DateLabel: g.date.Format("Jan 2"),
			GatesOpen: resolveGatesOpen(g.dayLabel, key, gatesCandidates, opts.FallbackGates),
			EventIds:  eventIds,
		})
	}

	if len(opts.IncludeEmptyDays) > 0 {
		seen := make(map[string]struct{}, len(days))
		for _, day := range days {
			seen[day.DayLabel] = struct{}{}
		}
		for _, day := range opts.IncludeEmptyDays {
			if _, dup := seen[day.DayLabel]; dup {
				continue
			}
			seen[day.DayLabel] = struct{}{}
			shell := day
			shell.EventIds = []string{}
			days = append(days, shell)
		}
	}

	return models.Schedule{Days: days}
}

// resolveGatesOpen picks the gate-open time for one day. Precedence: first
// non-blank event-level value in start order, then the ISO date key in the
// fallback map, then the day label, then DefaultGatesTime.
func resolveGatesOpen(dayLabel, isoKey string, candidates []string, lookup map[string]string) string {
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	if v := strings.TrimSpace(lookup[isoKey]); v != "" {
		return v
	}
	if v := strings.TrimSpace(lookup[dayLabel]); v != "" {
		return v
	}
	return DefaultGatesTime
}

// isoDateKey formats the calendar date of t in t's own offset, so events keep
// the day their producers intended regardless of server timezone.
func isoDateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
