// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Package visitors implements the anonymized unique-visitor counter. No raw
// IP or user agent is ever persisted, only a one-way hash scoped to a
// calendar day.
package visitors

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"time"
)

// ipHeaderCandidates is the ordered proxy header list consulted for the
// client address before falling back to the connection's own remote address.
var ipHeaderCandidates = []string{
	"X-Forwarded-For",
	"X-Real-Ip",
	"Cf-Connecting-Ip",
	"Fastly-Client-Ip",
	"Fly-Client-Ip",
	"True-Client-Ip",
}

// ClientIP resolves the requesting client's IP address. Multi-valued headers
// (comma-joined proxy chains) yield their first entry.
func ClientIP(r *http.Request) string {
	for _, header := range ipHeaderCandidates {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		first, _, _ := strings.Cut(value, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// Hash derives the anonymized visitor identity from IP and user agent.
func Hash(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}

// DayKey is the calendar-day bucket for a registration, in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Identify resolves a request to its visitor hash.
func Identify(r *http.Request) string {
	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = "unknown-agent"
	}
	return Hash(ClientIP(r), userAgent)
}
