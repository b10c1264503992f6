// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Package webhook validates and applies events.changed deliveries from
// WeBeFriends: HMAC signature verification over the raw body, header/body
// coercion, and the idempotent per-event state machine.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/howlinyuma/webesync/internal/logging"
)

// hexSignatureLength is the length of a hex-encoded SHA-256 digest.
const hexSignatureLength = 64

// normalizeSignature extracts the raw digest bytes from a signature header.
// Accepts an optional "sha256=" prefix. Anything that is not exactly a
// 64-character hex string is rejected.
func normalizeSignature(header string) ([]byte, bool) {
	value := strings.TrimSpace(header)
	if strings.HasPrefix(strings.ToLower(value), "sha256=") {
		value = value[len("sha256="):]
	}
	if len(value) != hexSignatureLength {
		return nil, false
	}
	sig, err := hex.DecodeString(value)
	if err != nil {
		return nil, false
	}
	return sig, true
}

// VerifySignature checks the header's HMAC-SHA256 over the exact raw body.
// With no secret configured every request is rejected; a misconfigured
// deployment must fail closed.
func VerifySignature(rawBody []byte, header, secret string) bool {
	if secret == "" {
		logging.Error().Msg("webhook secret is not configured, rejecting delivery")
		return false
	}
	provided, ok := normalizeSignature(header)
	if !ok {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), provided)
}
