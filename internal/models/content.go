// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Package models defines the canonical festival content schema shared by the
// normalizer, the schedule deriver, the document store, and the HTTP surface.
package models

// ImageAsset is a renderable image reference. Src is required wherever the
// asset itself is required; Alt defaults to the empty string.
type ImageAsset struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// CtaLink is a call-to-action link in hero blocks.
type CtaLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// HeroBlock is the optional hero section of a festival page.
type HeroBlock struct {
	Kicker       string      `json:"kicker,omitempty"`
	Title        string      `json:"title"`
	Tagline      string      `json:"tagline,omitempty"`
	Description  string      `json:"description,omitempty"`
	PrimaryCta   *CtaLink    `json:"primaryCta,omitempty"`
	SecondaryCta *CtaLink    `json:"secondaryCta,omitempty"`
	Background   *ImageAsset `json:"background,omitempty"`
}

// FestivalStat is a headline number shown on the site ("Stages: 4").
// Value is string-or-number upstream, so it stays loosely typed.
type FestivalStat struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Sponsor is one festival sponsor entry.
type Sponsor struct {
	Name        string `json:"name"`
	Tier        string `json:"tier"`
	Description string `json:"description"`
}

// FaqItem is one frequently-asked-question entry.
type FaqItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// EventDetail is one festival event or performance. A record missing any of
// ID/Title/Stage/DayLabel/Area/Start/End or a non-empty Image.Src is not a
// valid EventDetail and is discarded during normalization.
type EventDetail struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Stage       string     `json:"stage"`
	DayLabel    string     `json:"dayLabel"`
	Area        string     `json:"area"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	Description string     `json:"description"`
	Image       ImageAsset `json:"image"`
	Tags        []string   `json:"tags"`

	Slug        string         `json:"slug,omitempty"`
	GatesOpenAt string         `json:"gatesOpenAt,omitempty"`
	DateLabel   string         `json:"dateLabel,omitempty"`
	Status      string         `json:"status,omitempty"`
	Recurrence  any            `json:"recurrence,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Clone returns an independently owned copy of the event. Schedule derivation
// hands events to callers that may mutate them, so aliasing the source slice
// is not allowed.
func (e EventDetail) Clone() EventDetail {
	out := e
	if e.Tags != nil {
		out.Tags = make([]string, len(e.Tags))
		copy(out.Tags, e.Tags)
	}
	if e.Metadata != nil {
		out.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// ScheduleDay is one derived calendar day of the schedule. EventIds reference
// EventDetail.ID in chronological start order.
type ScheduleDay struct {
	DayLabel  string   `json:"dayLabel"`
	DateLabel string   `json:"dateLabel"`
	GatesOpen string   `json:"gatesOpen"`
	EventIds  []string `json:"eventIds"`
}

// Schedule is the ordered day-by-day festival schedule, calendar date
// ascending. It is fully recomputed on every rebuild, never patched.
type Schedule struct {
	Days []ScheduleDay `json:"days"`
}

// IntegrationMeta identifies the upstream source of a content snapshot.
type IntegrationMeta struct {
	SiteSlug     string `json:"siteSlug"`
	SiteName     string `json:"siteName"`
	SourcePageID string `json:"sourcePageId"`
	GeneratedAt  string `json:"generatedAt"`
}

// FestivalContent is the aggregate root persisted per site: everything the
// public site needs to render, with Events already filtered to upcoming and
// Schedule derived from them.
type FestivalContent struct {
	Meta     IntegrationMeta `json:"meta"`
	Hero     *HeroBlock      `json:"hero,omitempty"`
	Stats    []FestivalStat  `json:"stats"`
	Events   []EventDetail   `json:"events"`
	Schedule Schedule        `json:"schedule"`
	Gallery  []ImageAsset    `json:"gallery"`
	Sponsors []Sponsor       `json:"sponsors"`
	Faqs     []FaqItem       `json:"faqs"`
}

// Clone returns a deep copy of the content. Cached snapshots are shared
// between requests and must never leak mutable references.
func (c FestivalContent) Clone() FestivalContent {
	out := c
	if c.Hero != nil {
		hero := *c.Hero
		out.Hero = &hero
	}
	if c.Stats != nil {
		out.Stats = append([]FestivalStat(nil), c.Stats...)
	}
	if c.Events != nil {
		out.Events = make([]EventDetail, len(c.Events))
		for i, ev := range c.Events {
			out.Events[i] = ev.Clone()
		}
	}
	if c.Schedule.Days != nil {
		out.Schedule.Days = make([]ScheduleDay, len(c.Schedule.Days))
		for i, day := range c.Schedule.Days {
			out.Schedule.Days[i] = day
			if day.EventIds != nil {
				out.Schedule.Days[i].EventIds = append([]string(nil), day.EventIds...)
			}
		}
	}
	if c.Gallery != nil {
		out.Gallery = append([]ImageAsset(nil), c.Gallery...)
	}
	if c.Sponsors != nil {
		out.Sponsors = append([]Sponsor(nil), c.Sponsors...)
	}
	if c.Faqs != nil {
		out.Faqs = append([]FaqItem(nil), c.Faqs...)
	}
	return out
}
