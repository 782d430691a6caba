// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// NATS subjects that the meeting service sends messages about.
const (
	// MeetingLifecycleSubjectPrefix prefixes lifecycle event subjects.
	// The subject is of the form: meetings.lifecycle.<status>
	MeetingLifecycleSubjectPrefix = "meetings.lifecycle."
)

// NATS wildcard subjects that the meeting service handles messages about.
const (
	// MeetingsAPIQueue is the queue group shared by all service replicas.
	// The subject is of the form: meetings-api.queue
	MeetingsAPIQueue = "meetings-api.queue"
)

// NATS specific subjects that the meeting service handles messages about.
const (
	// MeetingCancelSubject is the request/reply subject for owner cancellation.
	// The subject is of the form: meetings.cancel
	MeetingCancelSubject = "meetings.cancel"
)

// LifecycleSubject returns the subject a lifecycle event for the status is published on.
func LifecycleSubject(status MeetingStatus) string {
	return MeetingLifecycleSubjectPrefix + string(status)
}

// MeetingLifecycleEvent is published after every committed status or artifact change.
type MeetingLifecycleEvent struct {
	EventID        string        `json:"event_id"`
	MeetingID      string        `json:"meeting_id"`
	Action         string        `json:"action"`
	Status         MeetingStatus `json:"status"`
	PreviousStatus MeetingStatus `json:"previous_status"`
	RecordingURL   *string       `json:"recording_url,omitempty"`
	TranscriptURL  *string       `json:"transcript_url,omitempty"`
	OccurredAt     time.Time     `json:"occurred_at"`
}

// CancelMeetingRequest is the payload of a MeetingCancelSubject request.
type CancelMeetingRequest struct {
	MeetingID string `json:"meeting_id"`
	UserID    string `json:"user_id"`
}

// CancelMeetingReply is the reply to a MeetingCancelSubject request.
type CancelMeetingReply struct {
	Status MeetingStatus `json:"status,omitempty"`
	Error  string        `json:"error,omitempty"`
}
