// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import (
	"fmt"
	"time"
)

// Constants for the HTTP request headers
const (
	// SignatureHeader carries the provider's hex HMAC-SHA256 of the raw webhook body
	SignatureHeader string = "x-signature"

	// APIKeyHeader carries the provider API key on webhooks
	APIKeyHeader string = "x-api-key"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-Request-Id"

	// CacheControlHeader is the header name for response cache directives
	CacheControlHeader string = "Cache-Control"
)

// HTTP paths served by the API.
const (
	WebhookPath       = "/api/webhook"
	TranscriptPath    = "/api/transcript/{meetingId}"
	GuestMeetingPath  = "/api/guest-meeting/{meetingId}"
	MeetingIDPathName = "meetingId"
)

const (
	// DefaultSummaryCacheMaxAge is how long clients may cache a summary.
	DefaultSummaryCacheMaxAge = time.Hour
	// DefaultGuestCacheMaxAge is how long clients may cache the guest meeting view.
	DefaultGuestCacheMaxAge = 5 * time.Minute
	// MaxWebhookBodyBytes caps the webhook body read into memory.
	MaxWebhookBodyBytes int64 = 1 << 20
)

// PublicCacheControl returns a public Cache-Control value for maxAge, rounded down to seconds.
func PublicCacheControl(maxAge time.Duration) string {
	if maxAge <= 0 {
		return "no-store"
	}
	return fmt.Sprintf("public, max-age=%d", int64(maxAge/time.Second))
}
