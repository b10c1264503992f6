// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/howlinyuma/webesync/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	s.SetClock(func() time.Time {
		return time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	})
	return s
}

func testEvent(id, start, end string) models.EventDetail {
	return models.EventDetail{
		ID:       id,
		Title:    "Event " + id,
		Stage:    "Main Stage",
		DayLabel: "Friday",
		Area:     "Fairgrounds",
		Start:    start,
		End:      end,
		Image:    models.ImageAsset{Src: "/images/" + id + ".jpg", Alt: "poster"},
		Tags:     []string{"music"},
	}
}

func TestEnsureSiteSeedsOnce(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	seed := models.FestivalContent{
		Meta: models.IntegrationMeta{SiteSlug: "howlin", SiteName: "Howlin' Fest"},
	}
	got, err := s.EnsureSite("howlin", "page-1", seed)
	if err != nil {
		t.Fatalf("EnsureSite: %v", err)
	}
	if got.Meta.SiteName != "Howlin' Fest" {
		t.Fatalf("seed not returned: %+v", got.Meta)
	}

	other := models.FestivalContent{
		Meta: models.IntegrationMeta{SiteSlug: "howlin", SiteName: "Different"},
	}
	got, err = s.EnsureSite("howlin", "page-1", other)
	if err != nil {
		t.Fatalf("EnsureSite second call: %v", err)
	}
	if got.Meta.SiteName != "Howlin' Fest" {
		t.Fatalf("second EnsureSite reseeded: %+v", got.Meta)
	}

	doc, err := s.GetSite("howlin")
	if err != nil {
		t.Fatalf("GetSite: %v", err)
	}
	if doc.PageID != "page-1" {
		t.Fatalf("pageID = %q, want page-1", doc.PageID)
	}
}

func TestGetSiteMissing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.GetSite("nope"); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("err = %v, want ErrSiteNotFound", err)
	}
	if _, _, err := s.Snapshot("nope"); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("Snapshot err = %v, want ErrSiteNotFound", err)
	}
}

func TestApplyEventUpsertIdempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	ev := testEvent("e1", "2025-01-02T18:00Z", "2025-01-02T23:00Z")
	meta := WebhookMeta{Action: models.ActionCreated, CorrelationID: "cid-1", PageID: "page-1"}
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	applied, err := s.ApplyEventUpsert("howlin", ev, meta, t1)
	if err != nil || !applied {
		t.Fatalf("first upsert applied=%v err=%v", applied, err)
	}

	// Same trigger timestamp: a redelivery, must not apply.
	applied, err = s.ApplyEventUpsert("howlin", ev, meta, t1)
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if applied {
		t.Fatal("redelivery applied, want skip")
	}

	// Older timestamp: out-of-order, must not apply.
	applied, err = s.ApplyEventUpsert("howlin", ev, meta, t1.Add(-time.Minute))
	if err != nil || applied {
		t.Fatalf("out-of-order applied=%v err=%v", applied, err)
	}

	// Strictly newer applies and overwrites.
	ev2 := ev
	ev2.Title = "Renamed"
	applied, err = s.ApplyEventUpsert("howlin", ev2, WebhookMeta{Action: models.ActionUpdated}, t1.Add(time.Minute))
	if err != nil || !applied {
		t.Fatalf("newer upsert applied=%v err=%v", applied, err)
	}

	doc, err := s.GetEvent("howlin", "e1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if doc.Data == nil || doc.Data.Title != "Renamed" {
		t.Fatalf("event data = %+v", doc.Data)
	}
	if doc.LastAction != string(models.ActionUpdated) {
		t.Fatalf("lastAction = %q", doc.LastAction)
	}
}

func TestApplyEventUpsertRetainsPreviousData(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	original := testEvent("e1", "2025-01-02T18:00Z", "2025-01-02T23:00Z")
	if _, err := s.ApplyEventUpsert("howlin", original, WebhookMeta{Action: models.ActionCreated}, t1); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	doc, err := s.GetEvent("howlin", "e1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if doc.PreviousData != nil {
		t.Fatalf("first write previousData = %+v, want nil", doc.PreviousData)
	}

	renamed := original
	renamed.Title = "Renamed"
	if _, err := s.ApplyEventUpsert("howlin", renamed, WebhookMeta{Action: models.ActionUpdated}, t1.Add(time.Minute)); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	doc, err = s.GetEvent("howlin", "e1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if doc.Data == nil || doc.Data.Title != "Renamed" {
		t.Fatalf("event data = %+v", doc.Data)
	}
	if doc.PreviousData == nil || doc.PreviousData.Title != original.Title {
		t.Fatalf("previousData = %+v, want the overwritten payload", doc.PreviousData)
	}

	// A third write rolls the window forward by one version.
	again := renamed
	again.Title = "Renamed Again"
	if _, err := s.ApplyEventUpsert("howlin", again, WebhookMeta{Action: models.ActionUpdated}, t1.Add(2*time.Minute)); err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	doc, err = s.GetEvent("howlin", "e1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if doc.PreviousData == nil || doc.PreviousData.Title != "Renamed" {
		t.Fatalf("previousData = %+v, want the immediately prior version", doc.PreviousData)
	}
}

func TestApplyEventUpsertStampsSite(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	meta := WebhookMeta{Action: models.ActionCreated, CorrelationID: "cid-9", PageID: "page-1"}
	if _, err := s.ApplyEventUpsert("howlin", testEvent("e1", "2025-01-02T18:00Z", "2025-01-02T23:00Z"), meta, t1); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	doc, err := s.GetSite("howlin")
	if err != nil {
		t.Fatalf("GetSite: %v", err)
	}
	if doc.LastWebhookAction != "created" || doc.LastWebhookCorrelationID != "cid-9" {
		t.Fatalf("bookkeeping = %q/%q", doc.LastWebhookAction, doc.LastWebhookCorrelationID)
	}
	if !doc.LastWebhookTriggerAt.Equal(t1) {
		t.Fatalf("trigger at = %v", doc.LastWebhookTriggerAt)
	}
}

func TestApplyEventTombstone(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	ev := testEvent("e1", "2025-01-02T18:00Z", "2025-01-02T23:00Z")
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if _, err := s.ApplyEventUpsert("howlin", ev, WebhookMeta{Action: models.ActionCreated}, t1); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}

	applied, err := s.ApplyEventTombstone("howlin", "e1", nil, WebhookMeta{Action: models.ActionDeleted}, t1.Add(time.Minute))
	if err != nil || !applied {
		t.Fatalf("tombstone applied=%v err=%v", applied, err)
	}

	doc, err := s.GetEvent("howlin", "e1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if !doc.Deleted || doc.Data != nil {
		t.Fatalf("doc not tombstoned: %+v", doc)
	}
	if doc.PreviousData == nil || doc.PreviousData.ID != "e1" {
		t.Fatalf("previousData = %+v", doc.PreviousData)
	}

	// A late upsert with an older trigger must not resurrect it.
	applied, err = s.ApplyEventUpsert("howlin", ev, WebhookMeta{Action: models.ActionUpdated}, t1)
	if err != nil || applied {
		t.Fatalf("stale resurrect applied=%v err=%v", applied, err)
	}
}

func TestLiveEventsSkipsTombstones(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		ev := testEvent(id, "2025-01-02T18:00Z", "2025-01-02T23:00Z")
		if _, err := s.ApplyEventUpsert("howlin", ev, WebhookMeta{Action: models.ActionCreated}, t1); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	if _, err := s.ApplyEventTombstone("howlin", "b", nil, WebhookMeta{Action: models.ActionDeleted}, t1.Add(time.Second)); err != nil {
		t.Fatalf("tombstone: %v", err)
	}

	events, err := s.LiveEvents("howlin")
	if err != nil {
		t.Fatalf("LiveEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("live events = %d, want 2", len(events))
	}
	if events[0].ID != "a" || events[1].ID != "c" {
		t.Fatalf("live ids = %s, %s", events[0].ID, events[1].ID)
	}
}

func TestReconcileEvents(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"keep", "drop"} {
		ev := testEvent(id, "2025-01-02T18:00Z", "2025-01-02T23:00Z")
		if _, err := s.ApplyEventUpsert("howlin", ev, WebhookMeta{Action: models.ActionCreated}, t1); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	refreshAt := t1.Add(time.Hour)
	incoming := []models.EventDetail{
		testEvent("keep", "2025-01-02T18:00Z", "2025-01-02T23:00Z"),
		testEvent("fresh", "2025-01-03T18:00Z", "2025-01-03T23:00Z"),
	}
	if err := s.ReconcileEvents("howlin", incoming, models.RefreshScheduler, refreshAt); err != nil {
		t.Fatalf("ReconcileEvents: %v", err)
	}

	events, err := s.LiveEvents("howlin")
	if err != nil {
		t.Fatalf("LiveEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("live events = %d, want 2", len(events))
	}

	dropped, err := s.GetEvent("howlin", "drop")
	if err != nil {
		t.Fatalf("GetEvent drop: %v", err)
	}
	if !dropped.Deleted {
		t.Fatal("absent event not tombstoned")
	}
	if dropped.LastAction != "scheduler-removed" {
		t.Fatalf("lastAction = %q, want scheduler-removed", dropped.LastAction)
	}
	if dropped.PreviousData == nil {
		t.Fatal("tombstone lost previousData")
	}
}

func TestReconcilePreservesNewerWebhookEdit(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	refreshAt := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	edited := testEvent("e1", "2025-01-02T18:00Z", "2025-01-02T23:00Z")
	edited.Title = "Webhook Edit"
	if _, err := s.ApplyEventUpsert("howlin", edited, WebhookMeta{Action: models.ActionUpdated}, refreshAt.Add(time.Minute)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	stale := testEvent("e1", "2025-01-02T18:00Z", "2025-01-02T23:00Z")
	if err := s.ReconcileEvents("howlin", []models.EventDetail{stale}, models.RefreshManual, refreshAt); err != nil {
		t.Fatalf("ReconcileEvents: %v", err)
	}

	doc, err := s.GetEvent("howlin", "e1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if doc.Data == nil || doc.Data.Title != "Webhook Edit" {
		t.Fatalf("reconcile clobbered newer edit: %+v", doc.Data)
	}
}

func TestSnapshotPrefersMergedContent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	base := models.FestivalContent{Meta: models.IntegrationMeta{SiteSlug: "howlin", SiteName: "Base"}}
	if err := s.SaveBaseContent("howlin", "page-1", base, time.Date(2025, 1, 1, 3, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("SaveBaseContent: %v", err)
	}

	content, _, err := s.Snapshot("howlin")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if content.Meta.SiteName != "Base" {
		t.Fatalf("snapshot = %+v, want base content", content.Meta)
	}

	merged := base
	merged.Meta.SiteName = "Merged"
	if err := s.SaveMergedContent("howlin", merged, 3); err != nil {
		t.Fatalf("SaveMergedContent: %v", err)
	}

	content, _, err = s.Snapshot("howlin")
	if err != nil {
		t.Fatalf("Snapshot after merge: %v", err)
	}
	if content.Meta.SiteName != "Merged" {
		t.Fatalf("snapshot = %+v, want merged content", content.Meta)
	}

	doc, err := s.GetSite("howlin")
	if err != nil {
		t.Fatalf("GetSite: %v", err)
	}
	if doc.EventCount != 3 {
		t.Fatalf("eventCount = %d, want 3", doc.EventCount)
	}
}

func TestSaveMergedContentRequiresSite(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	err := s.SaveMergedContent("missing", models.FestivalContent{}, 0)
	if !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("err = %v, want ErrSiteNotFound", err)
	}
}

func TestRegisterVisitor(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	total, fresh, err := s.RegisterVisitor("hash-a", "2025-10-01")
	if err != nil {
		t.Fatalf("RegisterVisitor: %v", err)
	}
	if total != 1 || !fresh {
		t.Fatalf("first visit total=%d fresh=%v", total, fresh)
	}

	// Same hash same day: no double count.
	total, fresh, err = s.RegisterVisitor("hash-a", "2025-10-01")
	if err != nil {
		t.Fatalf("repeat visit: %v", err)
	}
	if total != 1 || fresh {
		t.Fatalf("repeat visit total=%d fresh=%v", total, fresh)
	}

	// Same hash next day counts again.
	total, _, err = s.RegisterVisitor("hash-a", "2025-10-02")
	if err != nil {
		t.Fatalf("next day visit: %v", err)
	}
	if total != 2 {
		t.Fatalf("next day total = %d, want 2", total)
	}

	// Different visitor.
	total, _, err = s.RegisterVisitor("hash-b", "2025-10-02")
	if err != nil {
		t.Fatalf("second visitor: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}

	got, err := s.VisitorTotal()
	if err != nil {
		t.Fatalf("VisitorTotal: %v", err)
	}
	if got != 3 {
		t.Fatalf("VisitorTotal = %d, want 3", got)
	}
}

func TestVisitorTotalEmpty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	got, err := s.VisitorTotal()
	if err != nil || got != 0 {
		t.Fatalf("VisitorTotal = %d, %v", got, err)
	}
}
