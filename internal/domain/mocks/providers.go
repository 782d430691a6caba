// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/meetbridge/meeting-service/internal/domain/models"
)

// MockWebhookValidator implements WebhookValidator for testing
type MockWebhookValidator struct {
	mock.Mock
}

func (m *MockWebhookValidator) Verify(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}

// MockTranscriptFetcher implements TranscriptFetcher for testing
type MockTranscriptFetcher struct {
	mock.Mock
}

func (m *MockTranscriptFetcher) FetchTranscript(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

// MockSummarizer implements Summarizer for testing
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockLifecycleEventPublisher implements LifecycleEventPublisher for testing
type MockLifecycleEventPublisher struct {
	mock.Mock
}

func (m *MockLifecycleEventPublisher) PublishLifecycleEvent(ctx context.Context, event models.MeetingLifecycleEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
