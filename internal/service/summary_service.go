// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
	"github.com/meetbridge/meeting-service/internal/logging"
	"github.com/meetbridge/meeting-service/internal/observability/metrics"
	"github.com/meetbridge/meeting-service/pkg/utils"
)

// Summary request outcomes, used as the metrics label.
const (
	SummaryOutcomeCacheHit  = "cache_hit"
	SummaryOutcomeGenerated = "generated"
	SummaryOutcomeNotReady  = "not_ready"
	SummaryOutcomeFailed    = "failed"
)

// SummaryService returns a meeting's transcript summary, generating and caching it on first request.
type SummaryService struct {
	meetings   domain.MeetingRepository
	fetcher    domain.TranscriptFetcher
	summarizer domain.Summarizer
	metrics    *metrics.Metrics
	config     ServiceConfig

	inflight singleflight.Group
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(
	meetings domain.MeetingRepository,
	fetcher domain.TranscriptFetcher,
	summarizer domain.Summarizer,
	m *metrics.Metrics,
	config ServiceConfig,
) *SummaryService {
	return &SummaryService{
		meetings:   meetings,
		fetcher:    fetcher,
		summarizer: summarizer,
		metrics:    m,
		config:     config,
	}
}

// ServiceReady checks if the service is ready to process requests
func (s *SummaryService) ServiceReady() bool {
	return s.meetings != nil && s.fetcher != nil && s.summarizer != nil
}

// GetSummary returns the cached summary of the meeting or runs the fetch and summarize
// pipeline once. Concurrent callers for the same meeting share one pipeline run.
func (s *SummaryService) GetSummary(ctx context.Context, meetingID string) (*models.MeetingSummary, error) {
	if meetingID == "" {
		return nil, domain.NewValidationError("meeting ID is required")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))

	meeting, err := s.meetings.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if meeting.Summary != nil {
		s.metrics.RecordSummaryRequest(SummaryOutcomeCacheHit)
		slog.DebugContext(ctx, "returning existing summary")
		return meeting.Summary, nil
	}

	if !meeting.HasTranscript() {
		s.metrics.RecordSummaryRequest(SummaryOutcomeNotReady)
		return nil, domain.ErrTranscriptNotReady
	}

	transcriptURL := utils.StringValue(meeting.TranscriptURL)
	v, err, shared := s.inflight.Do(meetingID, func() (any, error) {
		return s.generate(context.WithoutCancel(ctx), meetingID, transcriptURL)
	})
	if err != nil {
		s.metrics.RecordSummaryRequest(SummaryOutcomeFailed)
		return nil, err
	}

	if shared {
		slog.DebugContext(ctx, "summary shared with a concurrent request")
	}
	s.metrics.RecordSummaryRequest(SummaryOutcomeGenerated)
	return v.(*models.MeetingSummary), nil
}

func (s *SummaryService) generate(ctx context.Context, meetingID, transcriptURL string) (*models.MeetingSummary, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveSummaryGeneration(time.Since(start)) }()

	// a flight that finished between the caller's read and this one has already stored the summary
	current, err := s.meetings.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if current.Summary != nil {
		return current.Summary, nil
	}

	slog.InfoContext(ctx, "fetching transcript for summary")
	content, err := s.fetcher.FetchTranscript(ctx, transcriptURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch transcript", logging.ErrKey, err)
		return nil, errors.Join(domain.ErrTranscriptFetch, err)
	}
	slog.DebugContext(ctx, "transcript fetched", "content_length", len(content))

	text, err := s.summarizer.GenerateText(ctx, models.BuildSummaryPrompt(content))
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate summary", logging.ErrKey, err)
		return nil, errors.Join(domain.ErrSummaryGeneration, err)
	}

	summary := models.ParseSummaryResponse(text)
	if summary.Summary == "" && len(summary.QA) == 0 {
		slog.ErrorContext(ctx, "summarization model returned no usable content")
		return nil, domain.ErrSummaryGeneration
	}

	saved, err := s.meetings.SaveSummary(ctx, meetingID, summary)
	if err != nil {
		return nil, err
	}
	if !saved {
		// another process stored a summary first; serve the stored one so every caller sees the same content
		stored, err := s.meetings.Get(ctx, meetingID)
		if err != nil {
			return nil, err
		}
		if stored.Summary != nil {
			return stored.Summary, nil
		}
	}

	slog.InfoContext(ctx, "generated and stored summary", "qa_count", len(summary.QA))
	return &summary, nil
}

// GuestMeetingService serves the reduced meeting view for unauthenticated guests.
type GuestMeetingService struct {
	meetings domain.MeetingRepository
}

// NewGuestMeetingService creates a new GuestMeetingService.
func NewGuestMeetingService(meetings domain.MeetingRepository) *GuestMeetingService {
	return &GuestMeetingService{meetings: meetings}
}

// ServiceReady checks if the service is ready to process requests
func (s *GuestMeetingService) ServiceReady() bool {
	return s.meetings != nil
}

// GetGuestMeeting returns the guest projection of a meeting.
func (s *GuestMeetingService) GetGuestMeeting(ctx context.Context, meetingID string) (*models.GuestMeetingView, error) {
	if meetingID == "" {
		return nil, domain.NewValidationError("meeting ID is required")
	}
	meeting, err := s.meetings.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return meeting.GuestView(), nil
}
