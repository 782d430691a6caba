// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"log/slog"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/logging"
)

// SMTPService implements the EmailService interface using SMTP
type SMTPService struct {
	config    SMTPConfig
	templates MeetingTemplateManager
}

// SMTPConfig holds the SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string // Optional for authenticated SMTP
	Password string // Optional for authenticated SMTP
}

// NewSMTPService creates a new SMTP email service
func NewSMTPService(config SMTPConfig) (*SMTPService, error) {
	templates, err := NewTemplateManager()
	if err != nil {
		return nil, err
	}

	return &SMTPService{
		config:    config,
		templates: templates,
	}, nil
}

// SendArtifactsReady tells a guest that the meeting recording and summary are available
func (s *SMTPService) SendArtifactsReady(ctx context.Context, email domain.ArtifactsReadyEmail) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", email.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_name", email.MeetingName))

	rendered, err := s.templates.RenderArtifactsReady(email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render artifacts ready email", logging.ErrKey, err)
		return err
	}

	message := buildEmailMessage(email.RecipientEmail, ArtifactsReadySubject(email.MeetingName), rendered.HTML, rendered.Text, s.config)
	err = sendEmailMessage(ctx, email.RecipientEmail, message, s.config)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send artifacts ready email", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "artifacts ready email sent successfully")
	return nil
}

// ArtifactsReadySubject returns the subject line of the artifacts ready email
func ArtifactsReadySubject(meetingName string) string {
	return "Meeting Summary & Recording - " + meetingName
}
