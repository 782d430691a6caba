// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/meetbridge/meeting-service/pkg/utils"
)

// WebhookEventKind is the closed set of provider events the service reacts to.
type WebhookEventKind string

// Webhook event kinds.
const (
	WebhookEventUnknown            WebhookEventKind = "unknown"
	WebhookEventSessionStarted     WebhookEventKind = "session_started"
	WebhookEventParticipantLeft    WebhookEventKind = "participant_left"
	WebhookEventRecordingReady     WebhookEventKind = "recording_ready"
	WebhookEventTranscriptionReady WebhookEventKind = "transcription_ready"
)

// Provider event type names.
const (
	StreamEventSessionStarted     = "call.session_started"
	StreamEventParticipantLeft    = "call.session_participant_left"
	StreamEventRecordingReady     = "call.recording_ready"
	StreamEventTranscriptionReady = "call.transcription_ready"
)

var eventKindsByType = map[string]WebhookEventKind{
	StreamEventSessionStarted:              WebhookEventSessionStarted,
	StreamEventParticipantLeft:             WebhookEventParticipantLeft,
	StreamEventRecordingReady:              WebhookEventRecordingReady,
	StreamEventTranscriptionReady:          WebhookEventTranscriptionReady,
	string(WebhookEventSessionStarted):     WebhookEventSessionStarted,
	string(WebhookEventParticipantLeft):    WebhookEventParticipantLeft,
	string(WebhookEventRecordingReady):     WebhookEventRecordingReady,
	string(WebhookEventTranscriptionReady): WebhookEventTranscriptionReady,
}

// ClassifyEventType maps a provider event type to a kind. Unrecognised and empty types are unknown.
func ClassifyEventType(eventType string) WebhookEventKind {
	if kind, ok := eventKindsByType[eventType]; ok {
		return kind
	}
	return WebhookEventUnknown
}

// Action returns the lifecycle action the event kind drives.
func (k WebhookEventKind) Action() (LifecycleAction, bool) {
	switch k {
	case WebhookEventSessionStarted:
		return ActionSessionStarted, true
	case WebhookEventParticipantLeft:
		return ActionParticipantLeft, true
	case WebhookEventRecordingReady:
		return ActionRecordingReady, true
	case WebhookEventTranscriptionReady:
		return ActionTranscriptionReady, true
	}
	return "", false
}

// Errors returned by ParseWebhookEvent.
var (
	ErrEventMalformed            = errors.New("malformed event payload")
	ErrEventMissingCorrelationID = errors.New("event has no call correlation identifier")
	ErrEventInvalidArtifactURL   = errors.New("event carries no usable artifact url")
)

// WebhookEvent is one parsed provider event. The concrete type is one of
// *SessionStartedEvent, *ParticipantLeftEvent, *RecordingReadyEvent,
// *TranscriptionReadyEvent or *UnknownEvent.
type WebhookEvent interface {
	Kind() WebhookEventKind
	// CorrelationID is the provider identifier expected to match a meeting id.
	CorrelationID() string
}

// ArtifactEvent is implemented by events that deliver an artifact URL.
type ArtifactEvent interface {
	WebhookEvent
	ArtifactURL() string
}

// EventEnvelope holds the fields shared by every provider event.
type EventEnvelope struct {
	Type      string    `json:"type"`
	CallCID   string    `json:"call_cid"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStartedEvent is emitted when the first participant joins a call.
type SessionStartedEvent struct {
	EventEnvelope
	MeetingID string
}

func (e *SessionStartedEvent) Kind() WebhookEventKind { return WebhookEventSessionStarted }
func (e *SessionStartedEvent) CorrelationID() string  { return e.MeetingID }

// ParticipantLeftEvent is emitted when a participant leaves a call session.
type ParticipantLeftEvent struct {
	EventEnvelope
	CallID            string
	ParticipantUserID string
}

func (e *ParticipantLeftEvent) Kind() WebhookEventKind { return WebhookEventParticipantLeft }
func (e *ParticipantLeftEvent) CorrelationID() string  { return e.CallID }

// RecordingReadyEvent is emitted once the call recording is available.
type RecordingReadyEvent struct {
	EventEnvelope
	CallID string
	URL    string
}

func (e *RecordingReadyEvent) Kind() WebhookEventKind { return WebhookEventRecordingReady }
func (e *RecordingReadyEvent) CorrelationID() string  { return e.CallID }
func (e *RecordingReadyEvent) ArtifactURL() string    { return e.URL }

// TranscriptionReadyEvent is emitted once the call transcript is available.
type TranscriptionReadyEvent struct {
	EventEnvelope
	CallID string
	URL    string
}

func (e *TranscriptionReadyEvent) Kind() WebhookEventKind { return WebhookEventTranscriptionReady }
func (e *TranscriptionReadyEvent) CorrelationID() string  { return e.CallID }
func (e *TranscriptionReadyEvent) ArtifactURL() string    { return e.URL }

// UnknownEvent is any event type the service does not handle.
type UnknownEvent struct {
	EventEnvelope
}

func (e *UnknownEvent) Kind() WebhookEventKind { return WebhookEventUnknown }
func (e *UnknownEvent) CorrelationID() string  { return "" }

// URLStrategy extracts a candidate artifact URL from a decoded payload.
type URLStrategy struct {
	Name string
	Path []string
}

// RecordingURLStrategies is the lookup order for recording URLs. The first usable value wins.
var RecordingURLStrategies = []URLStrategy{
	{Name: "call_recording.url", Path: []string{"call_recording", "url"}},
	{Name: "recording.url", Path: []string{"recording", "url"}},
	{Name: "url", Path: []string{"url"}},
	{Name: "recording_url", Path: []string{"recording_url"}},
	{Name: "recording.mp4_url", Path: []string{"recording", "mp4_url"}},
}

// TranscriptURLStrategies is the lookup order for transcript URLs. The first usable value wins.
var TranscriptURLStrategies = []URLStrategy{
	{Name: "call_transcription.url", Path: []string{"call_transcription", "url"}},
	{Name: "transcription.url", Path: []string{"transcription", "url"}},
	{Name: "url", Path: []string{"url"}},
	{Name: "transcription_url", Path: []string{"transcription_url"}},
}

// Lookup returns the string at the strategy path, or "" if any segment is missing or not a string.
func (s URLStrategy) Lookup(payload map[string]any) string {
	var cur any = payload
	for _, key := range s.Path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[key]
	}
	str, _ := cur.(string)
	return str
}

// IsUsableArtifactURL rejects empty, whitespace-only and bare separator placeholders.
func IsUsableArtifactURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed != "" && trimmed != "."
}

// ExtractArtifactURL walks the strategies in order and returns the first usable URL
// and the name of the strategy that produced it.
func ExtractArtifactURL(payload map[string]any, strategies []URLStrategy) (string, string, bool) {
	for _, s := range strategies {
		if v := s.Lookup(payload); IsUsableArtifactURL(v) {
			return strings.TrimSpace(v), s.Name, true
		}
	}
	return "", "", false
}

// CallIDFromCID returns the id part of a "<type>:<id>" call cid.
func CallIDFromCID(cid string) (string, bool) {
	_, id, found := strings.Cut(cid, ":")
	if !found || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

type sessionStartedPayload struct {
	Call struct {
		ID     string `json:"id"`
		Custom struct {
			MeetingID string `json:"meetingId"`
		} `json:"custom"`
	} `json:"call"`
}

type participantLeftPayload struct {
	Participant *struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"participant"`
}

// ParseWebhookEvent decodes a raw provider body into a typed event. Per-kind
// required fields are validated here so handlers only see well-formed events.
// An unrecognised type yields *UnknownEvent with a nil error.
func ParseWebhookEvent(body []byte) (WebhookEvent, error) {
	var env EventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Join(ErrEventMalformed, err)
	}

	switch ClassifyEventType(env.Type) {
	case WebhookEventSessionStarted:
		var p sessionStartedPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, errors.Join(ErrEventMalformed, err)
		}
		callID, _ := CallIDFromCID(env.CallCID)
		meetingID := utils.CoalesceString(p.Call.Custom.MeetingID, callID, p.Call.ID)
		if meetingID == "" {
			return nil, ErrEventMissingCorrelationID
		}
		return &SessionStartedEvent{EventEnvelope: env, MeetingID: meetingID}, nil

	case WebhookEventParticipantLeft:
		callID, ok := CallIDFromCID(env.CallCID)
		if !ok {
			return nil, ErrEventMissingCorrelationID
		}
		var p participantLeftPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, errors.Join(ErrEventMalformed, err)
		}
		// without a participant the departure cannot be the host's
		left := &ParticipantLeftEvent{EventEnvelope: env, CallID: callID}
		if p.Participant != nil {
			left.ParticipantUserID = p.Participant.User.ID
		}
		return left, nil

	case WebhookEventRecordingReady:
		callID, url, err := parseArtifact(body, env, RecordingURLStrategies)
		if err != nil {
			return nil, err
		}
		return &RecordingReadyEvent{EventEnvelope: env, CallID: callID, URL: url}, nil

	case WebhookEventTranscriptionReady:
		callID, url, err := parseArtifact(body, env, TranscriptURLStrategies)
		if err != nil {
			return nil, err
		}
		return &TranscriptionReadyEvent{EventEnvelope: env, CallID: callID, URL: url}, nil
	}

	return &UnknownEvent{EventEnvelope: env}, nil
}

func parseArtifact(body []byte, env EventEnvelope, strategies []URLStrategy) (string, string, error) {
	callID, ok := CallIDFromCID(env.CallCID)
	if !ok {
		return "", "", ErrEventMissingCorrelationID
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", errors.Join(ErrEventMalformed, err)
	}
	url, _, found := ExtractArtifactURL(payload, strategies)
	if !found {
		return callID, "", ErrEventInvalidArtifactURL
	}
	return callID, url, nil
}
