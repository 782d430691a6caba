// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/meetbridge/meeting-service/internal/domain/mocks"
	"github.com/meetbridge/meeting-service/internal/domain/models"
	"github.com/meetbridge/meeting-service/internal/observability/metrics"
	"github.com/meetbridge/meeting-service/pkg/utils"
)

const (
	hostUserID  = "user-host"
	guestUserID = "user-guest"
	agentID     = "agent-1"
)

var baseTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// tickingClock returns a strictly increasing time on every call.
type tickingClock struct {
	n atomic.Int64
}

func (c *tickingClock) Now() time.Time {
	return baseTime.Add(time.Duration(c.n.Add(1)) * time.Second)
}

// countingNotifier records Notify calls.
type countingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *countingNotifier) Notify(_ context.Context, meetingID string) (NotificationReport, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, meetingID)
	return NotificationReport{Sent: 1}, nil
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type reconcilerFixture struct {
	store      *mocks.MemoryStore
	notifier   *countingNotifier
	reconciler *LifecycleReconciler
	config     ServiceConfig
}

func newReconcilerFixture() *reconcilerFixture {
	store := mocks.NewMemoryStore()
	store.PutAgent(&models.Agent{ID: agentID, UserID: hostUserID, Name: "Ada", CreatedAt: baseTime})

	clock := &tickingClock{}
	config := ServiceConfig{Now: clock.Now}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	notifier := &countingNotifier{}
	resolver := NewMeetingResolver(store, m, config)

	return &reconcilerFixture{
		store:      store,
		notifier:   notifier,
		reconciler: NewLifecycleReconciler(store, store.AgentRepository(), resolver, notifier, nil, m, config),
		config:     config,
	}
}

func newMeeting(id string, status models.MeetingStatus) *models.Meeting {
	return &models.Meeting{
		ID:        id,
		Name:      "Meeting " + id,
		UserID:    hostUserID,
		AgentID:   agentID,
		Status:    status,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
}

func completedMeeting(id string, endedAt time.Time) *models.Meeting {
	m := newMeeting(id, models.MeetingStatusCompleted)
	m.EndedAt = utils.Ptr(endedAt)
	return m
}

func recordingEvent(callID, url string) *models.RecordingReadyEvent {
	return &models.RecordingReadyEvent{CallID: callID, URL: url}
}

func transcriptionEvent(callID, url string) *models.TranscriptionReadyEvent {
	return &models.TranscriptionReadyEvent{CallID: callID, URL: url}
}
