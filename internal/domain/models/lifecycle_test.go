// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name         string
		current      MeetingStatus
		input        TransitionInput
		wantDecision Decision
		wantTo       MeetingStatus
		wantStarted  bool
		wantEnded    bool
	}{
		{
			name:         "session started activates upcoming meeting",
			current:      MeetingStatusUpcoming,
			input:        TransitionInput{Action: ActionSessionStarted},
			wantDecision: DecisionApply,
			wantTo:       MeetingStatusActive,
			wantStarted:  true,
		},
		{
			name:         "duplicate session started is ignored",
			current:      MeetingStatusActive,
			input:        TransitionInput{Action: ActionSessionStarted},
			wantDecision: DecisionIgnore,
			wantTo:       MeetingStatusActive,
		},
		{
			name:         "session started after completion is ignored",
			current:      MeetingStatusCompleted,
			input:        TransitionInput{Action: ActionSessionStarted},
			wantDecision: DecisionIgnore,
			wantTo:       MeetingStatusCompleted,
		},
		{
			name:         "session started on processing meeting is ignored",
			current:      MeetingStatusProcessing,
			input:        TransitionInput{Action: ActionSessionStarted},
			wantDecision: DecisionIgnore,
			wantTo:       MeetingStatusProcessing,
		},
		{
			name:         "session started on cancelled meeting is ignored",
			current:      MeetingStatusCancelled,
			input:        TransitionInput{Action: ActionSessionStarted},
			wantDecision: DecisionIgnore,
			wantTo:       MeetingStatusCancelled,
		},
		{
			name:         "host leaving active meeting completes it",
			current:      MeetingStatusActive,
			input:        TransitionInput{Action: ActionParticipantLeft, HostLeaving: true},
			wantDecision: DecisionApply,
			wantTo:       MeetingStatusCompleted,
			wantEnded:    true,
		},
		{
			name:         "guest leaving active meeting is ignored",
			current:      MeetingStatusActive,
			input:        TransitionInput{Action: ActionParticipantLeft},
			wantDecision: DecisionIgnore,
			wantTo:       MeetingStatusActive,
		},
		{
			name:         "host leaving completed meeting is ignored",
			current:      MeetingStatusCompleted,
			input:        TransitionInput{Action: ActionParticipantLeft, HostLeaving: true},
			wantDecision: DecisionIgnore,
			wantTo:       MeetingStatusCompleted,
		},
		{
			name:         "host leaving upcoming meeting is ignored",
			current:      MeetingStatusUpcoming,
			input:        TransitionInput{Action: ActionParticipantLeft, HostLeaving: true},
			wantDecision: DecisionIgnore,
			wantTo:       MeetingStatusUpcoming,
		},
		{
			name:         "recording ready completes active meeting",
			current:      MeetingStatusActive,
			input:        TransitionInput{Action: ActionRecordingReady},
			wantDecision: DecisionApply,
			wantTo:       MeetingStatusCompleted,
			wantEnded:    true,
		},
		{
			name:         "recording ready on completed meeting re-stamps end time",
			current:      MeetingStatusCompleted,
			input:        TransitionInput{Action: ActionRecordingReady},
			wantDecision: DecisionApply,
			wantTo:       MeetingStatusCompleted,
			wantEnded:    true,
		},
		{
			name:         "transcription ready keeps status",
			current:      MeetingStatusActive,
			input:        TransitionInput{Action: ActionTranscriptionReady},
			wantDecision: DecisionApply,
			wantTo:       MeetingStatusActive,
		},
		{
			name:         "cancel upcoming meeting",
			current:      MeetingStatusUpcoming,
			input:        TransitionInput{Action: ActionCancel},
			wantDecision: DecisionApply,
			wantTo:       MeetingStatusCancelled,
		},
		{
			name:         "cancel active meeting",
			current:      MeetingStatusActive,
			input:        TransitionInput{Action: ActionCancel},
			wantDecision: DecisionApply,
			wantTo:       MeetingStatusCancelled,
		},
		{
			name:         "cancel completed meeting is rejected",
			current:      MeetingStatusCompleted,
			input:        TransitionInput{Action: ActionCancel},
			wantDecision: DecisionReject,
			wantTo:       MeetingStatusCompleted,
		},
		{
			name:         "unknown action is rejected",
			current:      MeetingStatusActive,
			input:        TransitionInput{Action: "bogus"},
			wantDecision: DecisionReject,
			wantTo:       MeetingStatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transition(tt.current, tt.input)
			assert.Equal(t, tt.wantDecision, got.Decision)
			assert.Equal(t, tt.current, got.From)
			assert.Equal(t, tt.wantTo, got.To)
			assert.Equal(t, tt.wantStarted, got.SetStartedAt)
			assert.Equal(t, tt.wantEnded, got.SetEndedAt)
		})
	}
}

func TestTransitionResult_StatusChanged(t *testing.T) {
	assert.True(t, Transition(MeetingStatusUpcoming, TransitionInput{Action: ActionSessionStarted}).StatusChanged())
	assert.False(t, Transition(MeetingStatusActive, TransitionInput{Action: ActionTranscriptionReady}).StatusChanged())
	assert.False(t, Transition(MeetingStatusActive, TransitionInput{Action: ActionSessionStarted}).StatusChanged())
}

func TestSourceStatuses(t *testing.T) {
	assert.Equal(t, []MeetingStatus{MeetingStatusUpcoming}, SourceStatuses(ActionSessionStarted))
	assert.Equal(t, []MeetingStatus{MeetingStatusActive}, SourceStatuses(ActionParticipantLeft))
	assert.Nil(t, SourceStatuses(ActionRecordingReady))
	assert.Nil(t, SourceStatuses(ActionTranscriptionReady))

	// callers must not be able to mutate the guard table
	src := SourceStatuses(ActionCancel)
	src[0] = MeetingStatusCompleted
	assert.Equal(t, []MeetingStatus{MeetingStatusUpcoming, MeetingStatusActive}, SourceStatuses(ActionCancel))
}
