// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// LifecycleAction is an input to the meeting state machine.
type LifecycleAction string

// Lifecycle actions. The first four are driven by provider webhooks, cancel by the owner.
const (
	ActionSessionStarted     LifecycleAction = "session_started"
	ActionParticipantLeft    LifecycleAction = "participant_left"
	ActionRecordingReady     LifecycleAction = "recording_ready"
	ActionTranscriptionReady LifecycleAction = "transcription_ready"
	ActionCancel             LifecycleAction = "cancel"
)

// Decision is the outcome of evaluating a lifecycle action against the current status.
type Decision int

const (
	// DecisionApply means the action must be written to the store.
	DecisionApply Decision = iota
	// DecisionIgnore means the action is a replay or irrelevant and must be acknowledged without mutation.
	DecisionIgnore
	// DecisionReject means the action is illegal from the current status.
	DecisionReject
)

func (d Decision) String() string {
	switch d {
	case DecisionApply:
		return "apply"
	case DecisionIgnore:
		return "ignore"
	case DecisionReject:
		return "reject"
	}
	return "unknown"
}

// TransitionInput carries the event data the state machine needs beyond the action itself.
type TransitionInput struct {
	Action LifecycleAction
	// HostLeaving is only meaningful for ActionParticipantLeft.
	HostLeaving bool
}

// TransitionResult describes what a lifecycle action does to a meeting.
type TransitionResult struct {
	Decision Decision
	From     MeetingStatus
	To       MeetingStatus
	// SetStartedAt and SetEndedAt tell the store which timestamps to stamp with the commit time.
	SetStartedAt bool
	SetEndedAt   bool
}

// StatusChanged reports whether the applied transition moves the meeting to a different status.
func (r TransitionResult) StatusChanged() bool {
	return r.Decision == DecisionApply && r.From != r.To
}

// sourceStatuses lists, per action, the statuses from which the action applies.
// A nil entry means the action applies from any status.
var sourceStatuses = map[LifecycleAction][]MeetingStatus{
	ActionSessionStarted:     {MeetingStatusUpcoming},
	ActionParticipantLeft:    {MeetingStatusActive},
	ActionRecordingReady:     nil,
	ActionTranscriptionReady: nil,
	ActionCancel:             {MeetingStatusUpcoming, MeetingStatusActive},
}

// SourceStatuses returns the statuses the action may be applied from, for use
// as the guard of a conditional update. A nil result means no status guard.
func SourceStatuses(action LifecycleAction) []MeetingStatus {
	src := sourceStatuses[action]
	if src == nil {
		return nil
	}
	out := make([]MeetingStatus, len(src))
	copy(out, src)
	return out
}

func statusIn(s MeetingStatus, set []MeetingStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// Transition evaluates a lifecycle action against the current status.
//
// session_started: upcoming -> active, stamps started_at; anything else is ignored.
// participant_left: host leaving an active meeting -> completed, stamps ended_at; otherwise ignored.
// recording_ready: forces completed and stamps ended_at from any status.
// transcription_ready: applies without a status change.
// cancel: upcoming|active -> cancelled; rejected otherwise.
func Transition(current MeetingStatus, in TransitionInput) TransitionResult {
	res := TransitionResult{Decision: DecisionIgnore, From: current, To: current}

	switch in.Action {
	case ActionSessionStarted:
		if statusIn(current, sourceStatuses[in.Action]) {
			res.Decision = DecisionApply
			res.To = MeetingStatusActive
			res.SetStartedAt = true
		}
	case ActionParticipantLeft:
		if in.HostLeaving && statusIn(current, sourceStatuses[in.Action]) {
			res.Decision = DecisionApply
			res.To = MeetingStatusCompleted
			res.SetEndedAt = true
		}
	case ActionRecordingReady:
		res.Decision = DecisionApply
		res.To = MeetingStatusCompleted
		res.SetEndedAt = true
	case ActionTranscriptionReady:
		res.Decision = DecisionApply
	case ActionCancel:
		if statusIn(current, sourceStatuses[in.Action]) {
			res.Decision = DecisionApply
			res.To = MeetingStatusCancelled
		} else {
			res.Decision = DecisionReject
		}
	default:
		res.Decision = DecisionReject
	}

	return res
}
