// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package visitors

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:    "x-forwarded-for single",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7"},
			remote:  "10.0.0.1:1234",
			want:    "203.0.113.7",
		},
		{
			name:    "x-forwarded-for chain takes first",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2, 10.0.0.3"},
			remote:  "10.0.0.1:1234",
			want:    "203.0.113.7",
		},
		{
			name: "header order",
			headers: map[string]string{
				"X-Real-Ip":        "198.51.100.4",
				"Cf-Connecting-Ip": "198.51.100.5",
			},
			remote: "10.0.0.1:1234",
			want:   "198.51.100.4",
		},
		{
			name:    "cloudflare header",
			headers: map[string]string{"Cf-Connecting-Ip": "198.51.100.5"},
			remote:  "10.0.0.1:1234",
			want:    "198.51.100.5",
		},
		{
			name:   "connection fallback",
			remote: "192.0.2.9:5555",
			want:   "192.0.2.9",
		},
		{
			name:   "connection without port",
			remote: "192.0.2.9",
			want:   "192.0.2.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/visitor-count", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Fatalf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	t.Parallel()

	a := Hash("203.0.113.7", "Mozilla/5.0")
	b := Hash("203.0.113.7", "Mozilla/5.0")
	if a != b {
		t.Fatal("hash not deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("hash length = %d, want 64", len(a))
	}
	if Hash("203.0.113.8", "Mozilla/5.0") == a {
		t.Fatal("different IPs collide")
	}
	if Hash("203.0.113.7", "curl/8.0") == a {
		t.Fatal("different agents collide")
	}
}

func TestDayKey(t *testing.T) {
	t.Parallel()

	// 23:30 in Phoenix is already the next day in UTC.
	phoenix := time.FixedZone("MST", -7*3600)
	got := DayKey(time.Date(2025, 10, 18, 23, 30, 0, 0, phoenix))
	if got != "2025-10-19" {
		t.Fatalf("DayKey = %q, want 2025-10-19", got)
	}
}

func TestIdentifyUsesUnknownAgent(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/visitor-count", nil)
	r.RemoteAddr = "192.0.2.9:5555"
	want := Hash("192.0.2.9", "unknown-agent")
	if got := Identify(r); got != want {
		t.Fatalf("Identify = %q, want %q", got, want)
	}
}
