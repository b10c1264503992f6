// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package webe

import (
	"strconv"
	"strings"
	"time"
)

// Default caching windows applied when the upstream omits directives or
// sends something unparsable.
const (
	DefaultMaxAge      = 120 * time.Second
	DefaultStaleWindow = 300 * time.Second
)

// ParseCacheControl extracts max-age and stale-while-revalidate from a
// Cache-Control header. Unknown directives are ignored; missing or invalid
// values fall back to the defaults. Zero and negative values count as
// invalid so a hostile header cannot disable caching entirely.
func ParseCacheControl(header string) (maxAge, staleWindow time.Duration) {
	maxAge = DefaultMaxAge
	staleWindow = DefaultStaleWindow
	if header == "" {
		return maxAge, staleWindow
	}
	for _, part := range strings.Split(header, ",") {
		directive := strings.TrimSpace(strings.ToLower(part))
		name, value, found := strings.Cut(directive, "=")
		if !found {
			continue
		}
		secs, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || secs <= 0 {
			continue
		}
		switch strings.TrimSpace(name) {
		case "max-age", "s-maxage":
			maxAge = time.Duration(secs) * time.Second
		case "stale-while-revalidate":
			staleWindow = time.Duration(secs) * time.Second
		}
	}
	return maxAge, staleWindow
}
