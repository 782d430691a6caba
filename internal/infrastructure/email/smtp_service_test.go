// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetbridge/meeting-service/internal/domain"
)

func artifactsEmail() domain.ArtifactsReadyEmail {
	return domain.ArtifactsReadyEmail{
		RecipientEmail: "grace@example.com",
		RecipientName:  "Grace",
		MeetingName:    "Roadmap review",
		RecordingURL:   "https://cdn.example.com/r.mp4",
		SummaryText:    "We agreed on the roadmap.",
		HostName:       "Ada",
	}
}

func TestNewSMTPService(t *testing.T) {
	config := SMTPConfig{
		Host: "localhost",
		Port: 1025,
		From: "test@example.com",
	}

	service, err := NewSMTPService(config)
	require.NoError(t, err)
	assert.NotNil(t, service)
	assert.Equal(t, config, service.config)
	assert.NotNil(t, service.templates)
}

func TestSMTPService_SendArtifactsReady(t *testing.T) {
	server := NewMockSMTPServerForTesting(t, nil)
	service, err := NewSMTPService(server.Config(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, service.SendArtifactsReady(ctx, artifactsEmail()))

	require.Len(t, server.Messages(), 1)
	message := server.Messages()[0]
	assert.Equal(t, []string{"TO:<grace@example.com>"}, server.Recipients())
	assert.Contains(t, message, "Subject: Meeting Summary & Recording - Roadmap review\r\n")
	assert.Contains(t, message, "Hi Grace,")
	assert.Contains(t, message, "Download Recording: https://cdn.example.com/r.mp4")
	assert.Contains(t, message, "Hosted by: Ada")
	assert.Contains(t, message, `<a href="https://cdn.example.com/r.mp4"`)
}

func TestSMTPService_SendArtifactsReady_Rejected(t *testing.T) {
	server := NewMockSMTPServerForTesting(t, map[string]string{"RCPT": "550 Mailbox unavailable"})
	service, err := NewSMTPService(server.Config(t))
	require.NoError(t, err)

	err = service.SendArtifactsReady(context.Background(), artifactsEmail())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
	assert.Empty(t, server.Messages())
}

func TestArtifactsReadySubject(t *testing.T) {
	assert.Equal(t, "Meeting Summary & Recording - Weekly sync", ArtifactsReadySubject("Weekly sync"))
}
