// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

// StreamWebhookValidator validates video provider webhook signatures.
// The signature is the hex encoded HMAC-SHA256 of the raw request body keyed with the API secret.
type StreamWebhookValidator struct {
	apiSecret string
}

// NewStreamWebhookValidator creates a new webhook validator for the given API secret
func NewStreamWebhookValidator(apiSecret string) *StreamWebhookValidator {
	return &StreamWebhookValidator{
		apiSecret: apiSecret,
	}
}

// Sign returns the signature the provider would send for body.
func (v *StreamWebhookValidator) Sign(body []byte) string {
	h := hmac.New(sha256.New, []byte(v.apiSecret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether signature matches body. An unconfigured secret never verifies.
func (v *StreamWebhookValidator) Verify(body []byte, signature string) bool {
	if v.apiSecret == "" {
		slog.Error("webhook API secret not configured, rejecting webhook")
		return false
	}

	provided, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(signature)))
	if err != nil {
		return false
	}

	h := hmac.New(sha256.New, []byte(v.apiSecret))
	h.Write(body)

	// Compare signatures using constant-time comparison
	return hmac.Equal(provided, h.Sum(nil))
}
