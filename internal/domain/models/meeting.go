// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// MeetingStatus is the persisted lifecycle state of a meeting.
type MeetingStatus string

// Meeting statuses. The set is closed; the store enforces it with a check constraint.
const (
	MeetingStatusUpcoming   MeetingStatus = "upcoming"
	MeetingStatusActive     MeetingStatus = "active"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// AllMeetingStatuses lists every valid status.
var AllMeetingStatuses = []MeetingStatus{
	MeetingStatusUpcoming,
	MeetingStatusActive,
	MeetingStatusProcessing,
	MeetingStatusCompleted,
	MeetingStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s MeetingStatus) Valid() bool {
	for _, v := range AllMeetingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s MeetingStatus) String() string {
	return string(s)
}

// ArtifactKind names one of the provider-produced meeting artifacts.
type ArtifactKind string

// Artifact kinds.
const (
	ArtifactRecording  ArtifactKind = "recording"
	ArtifactTranscript ArtifactKind = "transcript"
)

// Meeting is the store representation of a meeting.
type Meeting struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	UserID              string          `json:"user_id"`
	AgentID             string          `json:"agent_id"`
	Status              MeetingStatus   `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	StartedAt           *time.Time      `json:"started_at,omitempty"`
	EndedAt             *time.Time      `json:"ended_at,omitempty"`
	RecordingURL        *string         `json:"recording_url,omitempty"`
	TranscriptURL       *string         `json:"transcript_url,omitempty"`
	Summary             *MeetingSummary `json:"summary,omitempty"`
	ArtifactsNotifiedAt *time.Time      `json:"artifacts_notified_at,omitempty"`
}

// HasRecording reports whether a recording URL has been delivered.
func (m *Meeting) HasRecording() bool {
	return m != nil && m.RecordingURL != nil && *m.RecordingURL != ""
}

// HasTranscript reports whether a transcript URL has been delivered.
func (m *Meeting) HasTranscript() bool {
	return m != nil && m.TranscriptURL != nil && *m.TranscriptURL != ""
}

// HasAllArtifacts reports whether both the recording and the transcript are present.
func (m *Meeting) HasAllArtifacts() bool {
	return m.HasRecording() && m.HasTranscript()
}

// IsHost reports whether the given participant identity is the meeting owner.
func (m *Meeting) IsHost(participantUserID string) bool {
	return m != nil && participantUserID != "" && participantUserID == m.UserID
}

// GuestMeetingView is the reduced projection served to unauthenticated guests.
type GuestMeetingView struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	RecordingURL *string         `json:"recordingUrl"`
	Status       MeetingStatus   `json:"status"`
	Summary      *MeetingSummary `json:"summary"`
}

// GuestView builds the guest projection of the meeting.
func (m *Meeting) GuestView() *GuestMeetingView {
	if m == nil {
		return nil
	}
	return &GuestMeetingView{
		ID:           m.ID,
		Name:         m.Name,
		RecordingURL: m.RecordingURL,
		Status:       m.Status,
		Summary:      m.Summary,
	}
}

// Guest is an invitee of a meeting.
type Guest struct {
	ID        string    `json:"id"`
	MeetingID string    `json:"meeting_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Agent is the voice-AI agent assigned to a meeting.
type Agent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
