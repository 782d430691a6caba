// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/meetbridge/meeting-service/internal/domain"
)

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendArtifactsReady(ctx context.Context, email domain.ArtifactsReadyEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}
