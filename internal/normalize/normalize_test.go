// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package normalize

import (
	"reflect"
	"testing"
	"time"
)

var testDefaults = Defaults{
	SiteSlug:     "howlin-yuma",
	SiteName:     "Howlin' At The Moon Fest",
	SourcePageID: "webe-source-page",
}

func testNormalizer() *Normalizer {
	fixed := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	return NewWithClock(testDefaults, func() time.Time { return fixed })
}

func validRawEvent() map[string]any {
	return map[string]any{
		"id":       "moonrise-ceremony",
		"title":    "Moonrise Ceremony",
		"stage":    "Luna Main Stage",
		"dayLabel": "Friday",
		"area":     "Historic Courtyard",
		"start":    "2025-10-18T18:00:00-07:00",
		"end":      "2025-10-18T19:00:00-07:00",
		"image":    map[string]any{"src": "/images/events/moonrise.svg", "alt": "Crowd at dusk"},
		"tags":     []any{"featured", "  ", "new"},
	}
}

func TestEventDetailRequiredFields(t *testing.T) {
	t.Parallel()

	required := []string{"id", "title", "stage", "dayLabel", "area", "start", "end"}
	for _, field := range required {
		t.Run("missing "+field, func(t *testing.T) {
			t.Parallel()
			raw := validRawEvent()
			delete(raw, field)
			if _, ok := testNormalizer().EventDetail(raw); ok {
				t.Errorf("event without %q should be rejected", field)
			}
		})
		t.Run("blank "+field, func(t *testing.T) {
			t.Parallel()
			raw := validRawEvent()
			raw[field] = "   "
			if _, ok := testNormalizer().EventDetail(raw); ok {
				t.Errorf("event with blank %q should be rejected", field)
			}
		})
	}
}

func TestEventDetailRequiresImageSrc(t *testing.T) {
	t.Parallel()

	n := testNormalizer()

	raw := validRawEvent()
	delete(raw, "image")
	if _, ok := n.EventDetail(raw); ok {
		t.Error("event without image should be rejected")
	}

	raw = validRawEvent()
	raw["image"] = map[string]any{"src": "", "alt": "x"}
	if _, ok := n.EventDetail(raw); ok {
		t.Error("event with empty image src should be rejected")
	}

	raw = validRawEvent()
	raw["image"] = map[string]any{"src": "/images/a.svg"}
	detail, ok := n.EventDetail(raw)
	if !ok {
		t.Fatal("event with image src should normalize")
	}
	if detail.Image.Alt != "" {
		t.Errorf("image alt should default to empty, got %q", detail.Image.Alt)
	}
}

func TestEventDetailTagsAndOptionalFields(t *testing.T) {
	t.Parallel()

	raw := validRawEvent()
	raw["slug"] = "  moonrise  "
	raw["gatesOpenAt"] = " 4:00 PM "
	raw["date"] = " Oct 18 "

	detail, ok := testNormalizer().EventDetail(raw)
	if !ok {
		t.Fatal("expected valid event")
	}
	if !reflect.DeepEqual(detail.Tags, []string{"featured", "new"}) {
		t.Errorf("tags = %v", detail.Tags)
	}
	if detail.Slug != "moonrise" || detail.GatesOpenAt != "4:00 PM" {
		t.Errorf("slug/gates = %q / %q", detail.Slug, detail.GatesOpenAt)
	}
	if detail.DateLabel != "Oct 18" {
		t.Errorf("date field should map to dateLabel, got %q", detail.DateLabel)
	}
	if detail.Description != "" {
		t.Errorf("description should default to empty, got %q", detail.Description)
	}
}

func TestEventDetailFoldsUnknownFieldsIntoMetadata(t *testing.T) {
	t.Parallel()

	raw := validRawEvent()
	raw["status"] = "draft"
	raw["ticketTier"] = "vip"
	raw["nullish"] = nil
	raw["metadata"] = map[string]any{"origin": "cms"}

	detail, ok := testNormalizer().EventDetail(raw)
	if !ok {
		t.Fatal("expected valid event")
	}
	if detail.Metadata["status"] != "draft" || detail.Metadata["ticketTier"] != "vip" {
		t.Errorf("unknown fields not folded: %v", detail.Metadata)
	}
	if detail.Metadata["origin"] != "cms" {
		t.Errorf("explicit metadata not preserved: %v", detail.Metadata)
	}
	if _, present := detail.Metadata["nullish"]; present {
		t.Error("null fields must be skipped")
	}
}

func TestScheduleDayValidation(t *testing.T) {
	t.Parallel()

	n := testNormalizer()

	day, ok := n.ScheduleDay(map[string]any{
		"dayLabel":  "Friday",
		"dateLabel": "Oct 18",
		"eventIds":  []any{"a", "", "b", 5},
	})
	if !ok {
		t.Fatal("expected valid day")
	}
	if day.GatesOpen != "10:00 AM" {
		t.Errorf("gatesOpen should default, got %q", day.GatesOpen)
	}
	if !reflect.DeepEqual(day.EventIds, []string{"a", "b"}) {
		t.Errorf("eventIds = %v", day.EventIds)
	}

	if _, ok := n.ScheduleDay(map[string]any{"dayLabel": "Friday"}); ok {
		t.Error("day without dateLabel should be rejected")
	}
	if _, ok := n.ScheduleDay("not-a-day"); ok {
		t.Error("non-object day should be rejected")
	}
}

func TestFestivalContentDropsInvalidRecordsIndividually(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"meta": map[string]any{"siteSlug": "site", "siteName": "Site", "sourcePageId": "page-1"},
		"events": []any{
			validRawEvent(),
			map[string]any{"id": "broken"},
			"garbage",
		},
		"schedule": map[string]any{
			"days": []any{
				map[string]any{"dayLabel": "Friday", "dateLabel": "Oct 18"},
				map[string]any{"dayLabel": "Broken"},
			},
		},
	}

	content, ok := testNormalizer().FestivalContent(raw)
	if !ok {
		t.Fatal("expected valid content")
	}
	if len(content.Events) != 1 {
		t.Errorf("invalid events should be dropped individually, got %d", len(content.Events))
	}
	if len(content.Schedule.Days) != 1 {
		t.Errorf("malformed days should be dropped individually, got %d", len(content.Schedule.Days))
	}
}

func TestFestivalContentMetaDefaults(t *testing.T) {
	t.Parallel()

	content, ok := testNormalizer().FestivalContent(map[string]any{})
	if !ok {
		t.Fatal("expected content with defaults")
	}
	if content.Meta.SiteSlug != testDefaults.SiteSlug ||
		content.Meta.SiteName != testDefaults.SiteName ||
		content.Meta.SourcePageID != testDefaults.SourcePageID {
		t.Errorf("meta = %+v", content.Meta)
	}
	if content.Meta.GeneratedAt != "2025-10-01T12:00:00Z" {
		t.Errorf("generatedAt should fall back to the clock, got %q", content.Meta.GeneratedAt)
	}
}

func TestCoerceArrayEnvelopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want int
	}{
		{"plain array", []any{1, 2, 3}, 3},
		{"data envelope", map[string]any{"data": []any{1, 2}}, 2},
		{"items envelope", map[string]any{"items": []any{1}}, 1},
		{"record values", map[string]any{"a": 1, "b": 2}, 2},
		{"scalar", "nope", 0},
		{"nil", nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CoerceArray(tc.in); len(got) != tc.want {
				t.Errorf("CoerceArray(%v) len = %d, want %d", tc.in, len(got), tc.want)
			}
		})
	}
}

func TestCoerceArrayRecordOrderIsStable(t *testing.T) {
	t.Parallel()

	record := map[string]any{
		"gallery-03": "third",
		"gallery-01": "first",
		"gallery-02": "second",
	}
	want := []any{"first", "second", "third"}
	for i := 0; i < 20; i++ {
		got := CoerceArray(record)
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("run %d: got %v, want %v", i, got, want)
			}
		}
	}
}
