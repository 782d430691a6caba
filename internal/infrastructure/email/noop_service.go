// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"log/slog"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/logging"
)

// NoOpService is a no-operation email service that logs but doesn't send emails
type NoOpService struct{}

// NewNoOpService creates a new no-op email service
func NewNoOpService() *NoOpService {
	return &NoOpService{}
}

// SendArtifactsReady logs the notification but doesn't send an email
func (s *NoOpService) SendArtifactsReady(ctx context.Context, email domain.ArtifactsReadyEmail) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", email.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_name", email.MeetingName))

	slog.DebugContext(ctx, "email service disabled, skipping artifacts ready email")
	return nil
}
