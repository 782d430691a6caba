// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
)

// MockMeetingRepository implements MeetingRepository for testing
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) Get(ctx context.Context, meetingID string) (*models.Meeting, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) GetInStatus(ctx context.Context, meetingID string, statuses []models.MeetingStatus) (*models.Meeting, error) {
	args := m.Called(ctx, meetingID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) Update(ctx context.Context, upd domain.MeetingUpdate) (*domain.MeetingUpdateResult, bool, error) {
	args := m.Called(ctx, upd)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.MeetingUpdateResult), args.Bool(1), args.Error(2)
}

func (m *MockMeetingRepository) ClaimArtifactNotification(ctx context.Context, meetingID string, at time.Time) (bool, error) {
	args := m.Called(ctx, meetingID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingRepository) ListFallbackCandidates(ctx context.Context, artifact models.ArtifactKind, limit int) ([]*models.Meeting, error) {
	args := m.Called(ctx, artifact, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) SaveSummary(ctx context.Context, meetingID string, summary models.MeetingSummary) (bool, error) {
	args := m.Called(ctx, meetingID, summary)
	return args.Bool(0), args.Error(1)
}

// MockGuestRepository implements GuestRepository for testing
type MockGuestRepository struct {
	mock.Mock
}

func (m *MockGuestRepository) ListWithEmail(ctx context.Context, meetingID string) ([]*models.Guest, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Guest), args.Error(1)
}

// MockAgentRepository implements AgentRepository for testing
type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) Get(ctx context.Context, agentID string) (*models.Agent, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *MockAgentRepository) GetByUserID(ctx context.Context, userID string) (*models.Agent, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}
