// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
)

// WebhookValidator verifies that a webhook body was signed by the video provider.
type WebhookValidator interface {
	// Verify must be given the exact bytes received on the wire.
	Verify(body []byte, signature string) bool
}

// TranscriptFetcher downloads transcript content from the provider's artifact URL.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, url string) (string, error)
}

// Summarizer sends a prompt to the summarization model and returns its text reply.
type Summarizer interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
