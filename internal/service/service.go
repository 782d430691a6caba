// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"time"
)

type Service interface {
	ServiceReady() bool
}

// DefaultFallbackCandidateLimit bounds the fallback lookup of completed meetings lacking an artifact.
const DefaultFallbackCandidateLimit = 5

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// ProviderAPIKey, when set, must match the x-api-key header of inbound webhooks.
	ProviderAPIKey string
	// EmailConcurrency bounds concurrent guest notification sends.
	EmailConcurrency int
	// FallbackCandidateLimit bounds the single-candidate fallback query.
	FallbackCandidateLimit int
	// Now returns the commit time for lifecycle timestamps. Defaults to time.Now.
	Now func() time.Time
}

func (c ServiceConfig) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

// fallbackLimit is the number of candidates fetched for the single-candidate
// fallback. At least two are needed to tell one candidate from several.
func (c ServiceConfig) fallbackLimit() int {
	if c.FallbackCandidateLimit <= 0 {
		return DefaultFallbackCandidateLimit
	}
	return max(c.FallbackCandidateLimit, 2)
}
