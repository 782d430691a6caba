// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
	"github.com/meetbridge/meeting-service/internal/logging"
	"github.com/meetbridge/meeting-service/internal/observability/metrics"
)

// Notifier is the downstream trigger run once a meeting has both artifacts.
type Notifier interface {
	Notify(ctx context.Context, meetingID string) (NotificationReport, error)
}

// LifecycleReconciler applies provider events and owner actions to stored meetings.
// Every write is a single conditional update whose guard is derived from models.Transition,
// so replayed and out-of-order events are no-ops.
type LifecycleReconciler struct {
	meetings  domain.MeetingRepository
	agents    domain.AgentRepository
	resolver  *MeetingResolver
	notifier  Notifier
	publisher domain.LifecycleEventPublisher
	metrics   *metrics.Metrics
	config    ServiceConfig
}

// NewLifecycleReconciler creates a new LifecycleReconciler. publisher may be nil.
func NewLifecycleReconciler(
	meetings domain.MeetingRepository,
	agents domain.AgentRepository,
	resolver *MeetingResolver,
	notifier Notifier,
	publisher domain.LifecycleEventPublisher,
	m *metrics.Metrics,
	config ServiceConfig,
) *LifecycleReconciler {
	return &LifecycleReconciler{
		meetings:  meetings,
		agents:    agents,
		resolver:  resolver,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		config:    config,
	}
}

// ServiceReady checks if the service is ready to process requests
func (r *LifecycleReconciler) ServiceReady() bool {
	return r.meetings != nil && r.agents != nil && r.resolver != nil && r.notifier != nil
}

// SessionStarted activates an upcoming meeting. A meeting that is missing or already past
// upcoming yields ErrMeetingNotFound so duplicates surface as not-found without mutation.
// A meeting whose agent does not exist yields ErrAgentNotFound and is left untouched.
func (r *LifecycleReconciler) SessionStarted(ctx context.Context, event *models.SessionStartedEvent) error {
	meetingID := event.CorrelationID()
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))

	meeting, err := r.meetings.GetInStatus(ctx, meetingID, models.SourceStatuses(models.ActionSessionStarted))
	if err != nil {
		if errors.Is(err, domain.ErrMeetingNotFound) {
			r.metrics.RecordTransition(string(models.ActionSessionStarted), models.DecisionIgnore.String())
			slog.InfoContext(ctx, "no upcoming meeting for session start, ignoring")
		}
		return err
	}

	if _, err := r.agents.Get(ctx, meeting.AgentID); err != nil {
		if errors.Is(err, domain.ErrAgentNotFound) {
			slog.ErrorContext(ctx, "meeting references a missing agent",
				"agent_id", meeting.AgentID,
				logging.PriorityCritical(),
			)
		}
		return err
	}

	result, applied, err := r.apply(ctx, meeting, models.TransitionInput{Action: models.ActionSessionStarted}, domain.MeetingUpdate{})
	if err != nil {
		return err
	}
	if !applied {
		return domain.ErrMeetingNotFound
	}

	slog.InfoContext(ctx, "meeting started", "agent_id", result.Meeting.AgentID)
	return nil
}

// ParticipantLeft completes an active meeting when its host leaves. Guest departures and
// host departures from a meeting that is not active are acknowledged without change.
func (r *LifecycleReconciler) ParticipantLeft(ctx context.Context, event *models.ParticipantLeftEvent) error {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", event.CorrelationID()))

	meeting, err := r.resolver.Resolve(ctx, event.CorrelationID())
	if err != nil {
		return err
	}

	hostLeaving := meeting.IsHost(event.ParticipantUserID)
	_, applied, err := r.apply(ctx, meeting, models.TransitionInput{
		Action:      models.ActionParticipantLeft,
		HostLeaving: hostLeaving,
	}, domain.MeetingUpdate{})
	if err != nil {
		return err
	}

	switch {
	case applied:
		slog.InfoContext(ctx, "host left, meeting completed")
	case !hostLeaving:
		slog.DebugContext(ctx, "guest left meeting, not ending it", "participant_user_id", event.ParticipantUserID)
	default:
		slog.DebugContext(ctx, "host left a meeting that is not active, ignoring", "status", meeting.Status)
	}
	return nil
}

// ArtifactReady records a recording or transcript URL. Recordings force the meeting to
// completed and restamp its end time; transcripts leave status alone. When the write leaves
// both artifacts present, the first writer to claim the notification runs the notifier.
func (r *LifecycleReconciler) ArtifactReady(ctx context.Context, event models.ArtifactEvent) error {
	var (
		artifact models.ArtifactKind
		action   models.LifecycleAction
		upd      domain.MeetingUpdate
	)
	url := event.ArtifactURL()
	switch event.Kind() {
	case models.WebhookEventRecordingReady:
		artifact, action = models.ArtifactRecording, models.ActionRecordingReady
		upd.RecordingURL = &url
	case models.WebhookEventTranscriptionReady:
		artifact, action = models.ArtifactTranscript, models.ActionTranscriptionReady
		upd.TranscriptURL = &url
	default:
		return domain.NewValidationError(fmt.Sprintf("event kind %s carries no artifact", event.Kind()))
	}

	ctx = logging.AppendCtx(ctx, slog.String("correlation_id", event.CorrelationID()))

	meeting, viaFallback, err := r.resolver.ResolveForArtifact(ctx, event.CorrelationID(), artifact)
	if err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meeting.ID))

	result, applied, err := r.apply(ctx, meeting, models.TransitionInput{Action: action}, upd)
	if err != nil {
		return err
	}
	if !applied {
		// artifact actions have no status guard, so only a concurrent delete gets here
		return domain.ErrMeetingNotFound
	}

	slog.InfoContext(ctx, "meeting artifact stored",
		"artifact", string(artifact),
		"via_fallback", viaFallback,
		"status", result.Meeting.Status,
	)

	if result.Meeting.HasAllArtifacts() {
		r.notifyOnce(ctx, meeting.ID)
	}
	return nil
}

// CancelMeeting cancels an upcoming or active meeting on behalf of its owner.
func (r *LifecycleReconciler) CancelMeeting(ctx context.Context, meetingID, ownerID string) (*models.Meeting, error) {
	if meetingID == "" || ownerID == "" {
		return nil, domain.NewValidationError("meeting_id and user_id are required")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))

	meeting, err := r.meetings.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.UserID != ownerID {
		return nil, domain.ErrMeetingNotFound
	}

	result, applied, err := r.apply(ctx, meeting, models.TransitionInput{Action: models.ActionCancel}, domain.MeetingUpdate{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("cannot cancel meeting in status %s: %w", meeting.Status, domain.ErrIllegalTransition)
	}

	slog.InfoContext(ctx, "meeting cancelled by owner")
	return result.Meeting, nil
}

// apply evaluates the transition for the freshly read meeting and, if it applies, writes it
// guarded by the same source statuses. base carries the artifact fields and owner guard.
func (r *LifecycleReconciler) apply(ctx context.Context, meeting *models.Meeting, in models.TransitionInput, base domain.MeetingUpdate) (*domain.MeetingUpdateResult, bool, error) {
	decision := models.Transition(meeting.Status, in)
	if decision.Decision != models.DecisionApply {
		r.metrics.RecordTransition(string(in.Action), decision.Decision.String())
		return nil, false, nil
	}

	now := r.config.now()
	upd := base
	upd.ID = meeting.ID
	upd.FromStatuses = models.SourceStatuses(in.Action)
	upd.UpdatedAt = now
	if decision.StatusChanged() || decision.SetEndedAt {
		upd.Status = &decision.To
	}
	if decision.SetStartedAt {
		upd.StartedAt = &now
	}
	if decision.SetEndedAt {
		upd.EndedAt = &now
	}

	result, applied, err := r.meetings.Update(ctx, upd)
	if err != nil {
		return nil, false, err
	}
	if !applied {
		r.metrics.RecordTransition(string(in.Action), models.DecisionIgnore.String())
		slog.InfoContext(ctx, "meeting changed concurrently, transition not applied", "action", string(in.Action))
		return nil, false, nil
	}

	r.metrics.RecordTransition(string(in.Action), models.DecisionApply.String())
	r.publish(ctx, in.Action, result)
	return result, true, nil
}

func (r *LifecycleReconciler) notifyOnce(ctx context.Context, meetingID string) {
	claimed, err := r.meetings.ClaimArtifactNotification(ctx, meetingID, r.config.now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to claim artifact notification", logging.ErrKey, err)
		return
	}
	if !claimed {
		slog.DebugContext(ctx, "guests already notified for this meeting")
		return
	}

	// the state change is committed; a caller going away must not cut the fan-out short
	if _, err := r.notifier.Notify(context.WithoutCancel(ctx), meetingID); err != nil {
		slog.ErrorContext(ctx, "failed to notify guests", logging.ErrKey, err)
	}
}

func (r *LifecycleReconciler) publish(ctx context.Context, action models.LifecycleAction, result *domain.MeetingUpdateResult) {
	if r.publisher == nil {
		return
	}
	event := models.MeetingLifecycleEvent{
		EventID:        uuid.NewString(),
		MeetingID:      result.Meeting.ID,
		Action:         string(action),
		Status:         result.Meeting.Status,
		PreviousStatus: result.PreviousStatus,
		RecordingURL:   result.Meeting.RecordingURL,
		TranscriptURL:  result.Meeting.TranscriptURL,
		OccurredAt:     result.Meeting.UpdatedAt,
	}
	err := r.publisher.PublishLifecycleEvent(ctx, event)
	r.metrics.RecordLifecyclePublish(err)
	if err != nil {
		slog.WarnContext(ctx, "failed to publish lifecycle event", logging.ErrKey, err)
	}
}
