// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Package normalize converts loosely-typed upstream JSON into the canonical
// content schema. It is the only layer that touches duck-typed payloads; the
// rest of the pipeline works on models types exclusively.
//
// Every function follows the same contract: a record either normalizes to a
// fully valid value or is rejected as a whole. A rejection never aborts the
// processing of sibling records.
package normalize

import (
	"sort"
	"strings"
	"time"
)

// Defaults supplies the site-level fallbacks applied when upstream content
// metadata is absent or blank.
type Defaults struct {
	SiteSlug     string
	SiteName     string
	SourcePageID string
}

// Normalizer normalizes upstream payloads. The clock is injectable so
// generatedAt fallbacks are deterministic under test.
type Normalizer struct {
	defaults Defaults
	now      func() time.Time
}

// New returns a Normalizer with the given defaults and the wall clock.
func New(defaults Defaults) *Normalizer {
	return NewWithClock(defaults, time.Now)
}

// NewWithClock returns a Normalizer with an explicit clock.
func NewWithClock(defaults Defaults, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{defaults: defaults, now: now}
}

// IsRecord reports whether v is a JSON object.
func IsRecord(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// StringValue extracts a trimmed-checked string; blank strings are absent.
func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// CoerceArray accommodates the upstream envelope variants for list fields:
// a plain array, an object with a "data" or "items" array property, or a
// plain record whose values are taken in place of the array. Anything else
// is an empty sequence.
func CoerceArray(v any) []any {
	switch value := v.(type) {
	case []any:
		return value
	case map[string]any:
		if data, ok := value["data"].([]any); ok {
			return data
		}
		if items, ok := value["items"].([]any); ok {
			return items
		}
		// Record values come out in key order; map iteration order
		// would make the resulting list nondeterministic.
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(keys))
		for _, key := range keys {
			out = append(out, value[key])
		}
		return out
	default:
		return nil
	}
}

// eventKnownKeys are the fields consumed into typed EventDetail fields.
// Everything else folds into metadata verbatim.
var eventKnownKeys = map[string]struct{}{
	"id": {}, "title": {}, "stage": {}, "dayLabel": {}, "area": {},
	"start": {}, "end": {}, "description": {}, "image": {}, "tags": {},
	"slug": {}, "gatesOpenAt": {}, "date": {}, "dateLabel": {},
	"recurrence": {}, "metadata": {},
}
