// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/howlinyuma/webesync/internal/models"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	secret := "shared-secret"
	body := []byte(`{"action":"updated","eventId":"e1"}`)
	valid := sign(body, secret)

	tests := []struct {
		name   string
		body   []byte
		header string
		secret string
		want   bool
	}{
		{"valid", body, valid, secret, true},
		{"valid with prefix", body, "sha256=" + valid, secret, true},
		{"valid with uppercase prefix", body, "SHA256=" + valid, secret, true},
		{"valid with whitespace", body, "  " + valid + "  ", secret, true},
		{"body mutated", append([]byte{'x'}, body...), valid, secret, false},
		{"signature truncated", body, valid[:63], secret, false},
		{"signature not hex", body, valid[:62] + "zz", secret, false},
		{"wrong secret", body, sign(body, "other"), secret, false},
		{"empty header", body, "", secret, false},
		{"no secret configured", body, valid, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := VerifySignature(tt.body, tt.header, tt.secret); got != tt.want {
				t.Fatalf("VerifySignature = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifySignatureSingleByteMutation(t *testing.T) {
	t.Parallel()

	secret := "shared-secret"
	body := []byte(`{"action":"created","eventId":"e2"}`)
	valid := sign(body, secret)

	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		if VerifySignature(mutated, valid, secret) {
			t.Fatalf("mutation at byte %d accepted", i)
		}
	}
}

func TestCoerceAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		body   string
		want   models.EventAction
	}{
		{"header wins", "deleted", "created", models.ActionDeleted},
		{"header case insensitive", " Created ", "", models.ActionCreated},
		{"invalid header falls to body", "destroyed", "deleted", models.ActionDeleted},
		{"invalid both defaults", "destroyed", "exploded", models.ActionUpdated},
		{"empty defaults", "", "", models.ActionUpdated},
		{"body only", "", "created", models.ActionCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CoerceAction(tt.header, tt.body); got != tt.want {
				t.Fatalf("CoerceAction = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTriggeredAt(t *testing.T) {
	t.Parallel()

	fallback := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	got := ParseTriggeredAt("2025-10-02T08:30:00Z", fallback)
	want := time.Date(2025, 10, 2, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("parsed = %v, want %v", got, want)
	}

	if got := ParseTriggeredAt("not a date", fallback); !got.Equal(fallback) {
		t.Fatalf("garbage = %v, want fallback", got)
	}
	if got := ParseTriggeredAt("", fallback); !got.Equal(fallback) {
		t.Fatalf("empty = %v, want fallback", got)
	}
	if got := ParseTriggeredAt("   ", fallback); !got.Equal(fallback) {
		t.Fatalf("blank = %v, want fallback", got)
	}
}
