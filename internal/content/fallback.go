// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package content

import (
	"time"

	"github.com/howlinyuma/webesync/internal/models"
)

// FallbackContent returns the built-in festival fixture served when the
// remote API, the memory cache, and the persisted snapshot have all come up
// empty. GeneratedAt is stamped with the caller's clock; everything else is
// static.
func FallbackContent(now time.Time) models.FestivalContent {
	return models.FestivalContent{
		Meta: models.IntegrationMeta{
			SiteSlug:     "howlin-yuma",
			SiteName:     "Howlin' At The Moon Fest",
			SourcePageID: "mock-page",
			GeneratedAt:  now.UTC().Format(time.RFC3339),
		},
		Hero: &models.HeroBlock{
			Kicker:      "October 18 – 19 • Yuma Territorial Prison State Historic Park",
			Title:       "Howlin' At The Moon Fest",
			Tagline:     "Desert nights. Cosmic sound. Infinite vibes.",
			Description: "An immersive desert festival celebrating Southwestern artistry with luminous stages, collaborative installations, and stargazer sessions guided by local legends.",
			PrimaryCta:  &models.CtaLink{Label: "Get Tickets", Href: "#tickets"},
			SecondaryCta: &models.CtaLink{
				Label: "View Lineup",
				Href:  "#schedule",
			},
			Background: &models.ImageAsset{
				Src: "/images/hero/moonrise.svg",
				Alt: "Illustrated moon hanging above glowing desert festival stages",
			},
		},
		Stats: []models.FestivalStat{
			{Label: "Stages", Value: 4},
			{Label: "Artists", Value: 24},
			{Label: "Art Installations", Value: 12},
			{Label: "Miles of Neon", Value: 6},
		},
		Events: []models.EventDetail{
			{
				ID:          "moonrise-ceremony",
				Title:       "Moonrise Ceremony",
				Stage:       "Luna Main Stage",
				DayLabel:    "Friday",
				Area:        "Historic Courtyard",
				Start:       "2025-10-18T18:00:00-07:00",
				End:         "2025-10-18T19:00:00-07:00",
				Description: "Kick off the festival with a guided sonic meditation, indigenous drumming, and a collaborative howl that welcomes the moon over the Yuma dunes.",
				Image: models.ImageAsset{
					Src: "/images/events/moonrise.svg",
					Alt: "Crowd gathered around a glowing lunar stage at dusk",
				},
				Tags: []string{"featured"},
			},
			{
				ID:          "starlit-groove",
				Title:       "Starlit Groove Session",
				Stage:       "Constellation Dome",
				DayLabel:    "Friday",
				Area:        "Upper Yard",
				Start:       "2025-10-18T19:30:00-07:00",
				End:         "2025-10-18T21:00:00-07:00",
				Description: "Live-electronic fusion set with laser choreography mapped to the night sky and reactive sand-floor projections.",
				Image: models.ImageAsset{
					Src: "/images/events/starlit-groove.svg",
					Alt: "Performer silhouetted against starry laser projections inside a dome",
				},
				Tags: []string{"featured", "new"},
			},
			{
				ID:          "midnight-market",
				Title:       "Midnight Makers Market",
				Stage:       "Luminous Bazaar",
				DayLabel:    "Friday",
				Area:        "Moonlit Midway",
				Start:       "2025-10-18T21:00:00-07:00",
				End:         "2025-10-19T00:00:00-07:00",
				Description: "After-dark market featuring regional artisans, neon glassblowers, cosmic cuisine, and one-night-only collaborations.",
				Image: models.ImageAsset{
					Src: "/images/events/midnight-market.svg",
					Alt: "Outdoor night market filled with glowing tents and visitors",
				},
				Tags: []string{"classic"},
			},
			{
				ID:          "sunrise-sound-bath",
				Title:       "Sunrise Sound Bath",
				Stage:       "Dawn Commons",
				DayLabel:    "Saturday",
				Area:        "Lower Terrace",
				Start:       "2025-10-19T06:30:00-07:00",
				End:         "2025-10-19T07:30:00-07:00",
				Description: "Crystal bowl collective with desert botanicals and guided breathing, designed to realign festival-goers for day two.",
				Image: models.ImageAsset{
					Src: "/images/events/sunrise-sound-bath.svg",
					Alt: "Participants relaxing on mats during a colorful sunrise sound bath",
				},
				Tags: []string{"new"},
			},
			{
				ID:          "lunar-legends",
				Title:       "Lunar Legends Showcase",
				Stage:       "Legends Lookout",
				DayLabel:    "Saturday",
				Area:        "Historic Guard Tower",
				Start:       "2025-10-19T19:00:00-07:00",
				End:         "2025-10-19T21:30:00-07:00",
				Description: "A curated lineup of Southwestern headliners and surprise guests paying tribute to Yuma's musical heritage under a full moon.",
				Image: models.ImageAsset{
					Src: "/images/events/lunar-legends.svg",
					Alt: "Band performing on an elevated tower stage with moon backdrop",
				},
				Tags: []string{"featured"},
			},
			{
				ID:          "cosmic-closer",
				Title:       "Cosmic Closer B2B",
				Stage:       "Gravity Well",
				DayLabel:    "Saturday",
				Area:        "Outer Yard",
				Start:       "2025-10-19T22:00:00-07:00",
				End:         "2025-10-20T00:30:00-07:00",
				Description: "An interstellar back-to-back DJ finale with surprise collaborators and a synchronized drone show.",
				Image: models.ImageAsset{
					Src: "/images/events/cosmic-closer.svg",
					Alt: "DJs performing with drones lighting up the night sky",
				},
				Tags: []string{"featured", "classic"},
			},
		},
		Schedule: models.Schedule{
			Days: []models.ScheduleDay{
				{
					DayLabel:  "Friday",
					DateLabel: "Oct 18",
					GatesOpen: "10:00 AM",
					EventIds:  []string{"moonrise-ceremony", "starlit-groove", "midnight-market"},
				},
				{
					DayLabel:  "Saturday",
					DateLabel: "Oct 19",
					GatesOpen: "10:00 AM",
					EventIds:  []string{"sunrise-sound-bath", "lunar-legends", "cosmic-closer"},
				},
			},
		},
		Gallery: []models.ImageAsset{
			{Src: "/images/gallery/lantern-walk.svg", Alt: "Guests walking with paper lanterns"},
			{Src: "/images/gallery/dome-lights.svg", Alt: "Light dome pulsing with color"},
			{Src: "/images/gallery/fire-dancers.svg", Alt: "Fire dancers performing at night"},
			{Src: "/images/gallery/drone-show.svg", Alt: "Drone show forming a wolf howling"},
		},
		Sponsors: []models.Sponsor{
			{
				Name:        "Lunar Labs",
				Tier:        "Premier",
				Description: "Innovators in immersive stage lighting and responsive projection systems.",
			},
			{
				Name:        "Desert Bloom Coffee",
				Tier:        "Stage",
				Description: "Keeping the overnight crowd energized with roasted-on-site brews.",
			},
			{
				Name:        "Yuma Arts Coalition",
				Tier:        "Community",
				Description: "Supporting regional creatives through year-round programming.",
			},
			{
				Name:        "Stargazer Outfitters",
				Tier:        "Stage",
				Description: "Night-vision ready apparel and reflective wear for nocturnal explorers.",
			},
		},
		Faqs: []models.FaqItem{
			{
				Question: "What are the festival hours?",
				Answer:   "Gates open at 10:00 AM each day. Programming runs until 12:30 AM with chill-out zones open until 2:00 AM.",
			},
			{
				Question: "Is re-entry allowed?",
				Answer:   "Yes, re-entry is permitted until 10:00 PM each evening with a valid wristband scan.",
			},
			{
				Question: "Are kids welcome?",
				Answer:   "All ages are welcome until 10:00 PM. After 10:00 PM, the festival shifts to 18+ programming. Kids under 12 attend free with a guardian.",
			},
			{
				Question: "What should I bring?",
				Answer:   "Layered clothing, a refillable water bottle, comfortable footwear for uneven terrain, and a light to guide your way between stages.",
			},
		},
	}
}
