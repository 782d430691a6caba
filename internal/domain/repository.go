// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/meetbridge/meeting-service/internal/domain/models"
)

// MeetingUpdate is a single conditional write to one meeting row.
// Nil fields are left untouched.
type MeetingUpdate struct {
	ID string
	// OwnerID, when set, restricts the update to meetings owned by that user.
	OwnerID string
	// FromStatuses, when non-empty, restricts the update to meetings currently in one of these statuses.
	FromStatuses []models.MeetingStatus

	Status        *models.MeetingStatus
	StartedAt     *time.Time
	EndedAt       *time.Time
	RecordingURL  *string
	TranscriptURL *string
	UpdatedAt     time.Time
}

// MeetingUpdateResult is the meeting row as committed plus the status it had before the write.
type MeetingUpdateResult struct {
	Meeting        *models.Meeting
	PreviousStatus models.MeetingStatus
}

// MeetingRepository defines the interface for meeting storage operations.
// Every mutation is a single-row, single-statement conditional update.
type MeetingRepository interface {
	// Get returns ErrMeetingNotFound when the meeting does not exist.
	Get(ctx context.Context, meetingID string) (*models.Meeting, error)
	// GetInStatus returns ErrMeetingNotFound when the meeting does not exist or is not in one of statuses.
	GetInStatus(ctx context.Context, meetingID string, statuses []models.MeetingStatus) (*models.Meeting, error)
	// Update applies upd; applied is false when no row matched the id and guards.
	Update(ctx context.Context, upd MeetingUpdate) (result *MeetingUpdateResult, applied bool, err error)
	// ClaimArtifactNotification stamps artifacts_notified_at if both artifacts are present
	// and no notification was claimed yet. Only one caller per meeting ever gets true.
	ClaimArtifactNotification(ctx context.Context, meetingID string, at time.Time) (bool, error)
	// ListFallbackCandidates returns completed meetings that lack the artifact, ordered by end time.
	ListFallbackCandidates(ctx context.Context, artifact models.ArtifactKind, limit int) ([]*models.Meeting, error)
	// SaveSummary persists the summary if none is stored yet; saved is false when another writer won.
	SaveSummary(ctx context.Context, meetingID string, summary models.MeetingSummary) (saved bool, err error)
}

// GuestRepository defines read access to meeting guests.
type GuestRepository interface {
	// ListWithEmail returns the meeting's guests that have an email address.
	ListWithEmail(ctx context.Context, meetingID string) ([]*models.Guest, error)
}

// AgentRepository defines read access to agents.
type AgentRepository interface {
	// Get returns ErrAgentNotFound when the agent does not exist.
	Get(ctx context.Context, agentID string) (*models.Agent, error)
	// GetByUserID returns the first agent owned by the user, or ErrAgentNotFound.
	GetByUserID(ctx context.Context, userID string) (*models.Agent, error)
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
