// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendArtifactsReady(ctx context.Context, email ArtifactsReadyEmail) error
}

// ArtifactsReadyEmail contains the data needed to tell a guest that a meeting's recording and summary are available
type ArtifactsReadyEmail struct {
	RecipientEmail string
	RecipientName  string
	MeetingName    string
	RecordingURL   string
	SummaryText    string // Optional, empty until a summary was generated
	HostName       string // Optional, empty when the host agent is unknown
}
