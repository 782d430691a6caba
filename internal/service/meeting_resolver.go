// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
	"github.com/meetbridge/meeting-service/internal/logging"
	"github.com/meetbridge/meeting-service/internal/observability/metrics"
)

// MeetingResolver maps provider correlation identifiers to stored meetings.
type MeetingResolver struct {
	meetings domain.MeetingRepository
	metrics  *metrics.Metrics
	config   ServiceConfig
}

// NewMeetingResolver creates a new MeetingResolver.
func NewMeetingResolver(meetings domain.MeetingRepository, m *metrics.Metrics, config ServiceConfig) *MeetingResolver {
	return &MeetingResolver{
		meetings: meetings,
		metrics:  m,
		config:   config,
	}
}

// ServiceReady checks if the service is ready to process requests
func (r *MeetingResolver) ServiceReady() bool {
	return r.meetings != nil
}

// Resolve returns the meeting whose id equals the correlation identifier.
func (r *MeetingResolver) Resolve(ctx context.Context, correlationID string) (*models.Meeting, error) {
	if correlationID == "" {
		return nil, domain.ErrMissingCorrelationID
	}
	return r.meetings.Get(ctx, correlationID)
}

// ResolveForArtifact resolves like Resolve and, when no meeting has that id, falls back
// to the completed meetings still lacking the artifact. The fallback only succeeds when
// exactly one such meeting exists; zero or several candidates yield ErrAmbiguousMeeting.
//
// The fallback can misattribute an artifact when two meetings complete close together
// and the provider identifier matches neither.
func (r *MeetingResolver) ResolveForArtifact(ctx context.Context, correlationID string, artifact models.ArtifactKind) (*models.Meeting, bool, error) {
	meeting, err := r.Resolve(ctx, correlationID)
	if err == nil {
		return meeting, false, nil
	}
	if !errors.Is(err, domain.ErrMeetingNotFound) {
		return nil, false, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("artifact", string(artifact)))
	slog.WarnContext(ctx, "no meeting matches correlation id, trying single-candidate fallback")

	candidates, err := r.meetings.ListFallbackCandidates(ctx, artifact, r.config.fallbackLimit())
	if err != nil {
		return nil, false, err
	}

	if len(candidates) != 1 {
		r.metrics.RecordFallback(string(artifact), "ambiguous")
		slog.ErrorContext(ctx, "cannot match artifact to a single meeting",
			"candidate_count", len(candidates),
			logging.PriorityCritical(),
		)
		return nil, false, fmt.Errorf("%d fallback candidates for %s: %w", len(candidates), correlationID, domain.ErrAmbiguousMeeting)
	}

	r.metrics.RecordFallback(string(artifact), "matched")
	slog.WarnContext(ctx, "artifact attributed to the only completed meeting lacking it",
		"fallback_meeting_id", candidates[0].ID,
	)
	return candidates[0], true, nil
}
