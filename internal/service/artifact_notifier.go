// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
	"github.com/meetbridge/meeting-service/internal/logging"
	"github.com/meetbridge/meeting-service/internal/observability/metrics"
	"github.com/meetbridge/meeting-service/pkg/concurrent"
	"github.com/meetbridge/meeting-service/pkg/utils"
)

// NotificationReport summarizes one notification fan-out.
type NotificationReport struct {
	Sent   int
	Failed int
}

// ArtifactNotifier emails a meeting's guests once its recording and transcript are available.
type ArtifactNotifier struct {
	meetings     domain.MeetingRepository
	guests       domain.GuestRepository
	agents       domain.AgentRepository
	emailService domain.EmailService
	metrics      *metrics.Metrics
	config       ServiceConfig
}

// NewArtifactNotifier creates a new ArtifactNotifier.
func NewArtifactNotifier(
	meetings domain.MeetingRepository,
	guests domain.GuestRepository,
	agents domain.AgentRepository,
	emailService domain.EmailService,
	m *metrics.Metrics,
	config ServiceConfig,
) *ArtifactNotifier {
	return &ArtifactNotifier{
		meetings:     meetings,
		guests:       guests,
		agents:       agents,
		emailService: emailService,
		metrics:      m,
		config:       config,
	}
}

// ServiceReady checks if the service is ready to process requests
func (n *ArtifactNotifier) ServiceReady() bool {
	return n.meetings != nil && n.guests != nil && n.agents != nil && n.emailService != nil
}

// Notify sends the artifacts-ready email to every guest of the meeting that has an email address.
// Sends run concurrently and independently; a failed send is counted and logged, never retried.
func (n *ArtifactNotifier) Notify(ctx context.Context, meetingID string) (NotificationReport, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))

	meeting, err := n.meetings.Get(ctx, meetingID)
	if err != nil {
		return NotificationReport{}, err
	}
	if !meeting.HasAllArtifacts() {
		slog.DebugContext(ctx, "meeting artifacts incomplete, not notifying guests")
		return NotificationReport{}, nil
	}

	var (
		guests   []*models.Guest
		hostName string
	)
	lookups := concurrent.NewWorkerPool(2)
	err = lookups.Run(ctx,
		func() error {
			var errGuests error
			guests, errGuests = n.guests.ListWithEmail(ctx, meetingID)
			return errGuests
		},
		func() error {
			host, errHost := n.agents.GetByUserID(ctx, meeting.UserID)
			if errors.Is(errHost, domain.ErrAgentNotFound) {
				slog.WarnContext(ctx, "no agent found for meeting owner, sending without host name")
				return nil
			}
			if errHost != nil {
				return errHost
			}
			hostName = host.Name
			return nil
		},
	)
	if err != nil {
		return NotificationReport{}, err
	}

	if len(guests) == 0 {
		slog.InfoContext(ctx, "no guests with email to notify")
		return NotificationReport{}, nil
	}

	summaryText := ""
	if meeting.Summary != nil {
		summaryText = meeting.Summary.Summary
	}

	sends := make([]func() error, 0, len(guests))
	for _, guest := range guests {
		email := domain.ArtifactsReadyEmail{
			RecipientEmail: utils.StringValue(guest.Email),
			RecipientName:  guest.Name,
			MeetingName:    meeting.Name,
			RecordingURL:   utils.StringValue(meeting.RecordingURL),
			SummaryText:    summaryText,
			HostName:       hostName,
		}
		sends = append(sends, func() error {
			return n.emailService.SendArtifactsReady(ctx, email)
		})
	}

	results := concurrent.NewWorkerPool(n.emailConcurrency(len(sends))).RunAll(ctx, sends...)

	report := NotificationReport{Failed: concurrent.CountErrors(results)}
	report.Sent = len(results) - report.Failed
	for i, sendErr := range results {
		if sendErr != nil {
			slog.ErrorContext(ctx, "failed to send artifacts email to guest",
				"guest_id", guests[i].ID,
				logging.ErrKey, sendErr,
			)
		}
	}

	n.metrics.RecordNotificationSends(report.Sent, report.Failed)
	slog.InfoContext(ctx, "guest notification completed",
		"successful", report.Sent,
		"failed", report.Failed,
	)
	return report, nil
}

func (n *ArtifactNotifier) emailConcurrency(jobs int) int {
	if n.config.EmailConcurrency > 0 {
		return n.config.EmailConcurrency
	}
	return jobs
}
