// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
)

// MemoryStore is an in-memory implementation of the meeting, guest and agent
// repositories with the same conditional-update semantics as the database store.
type MemoryStore struct {
	mu       sync.Mutex
	meetings map[string]*models.Meeting
	guests   map[string][]*models.Guest
	agents   map[string]*models.Agent
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		meetings: make(map[string]*models.Meeting),
		guests:   make(map[string][]*models.Guest),
		agents:   make(map[string]*models.Agent),
	}
}

// PutMeeting stores a copy of the meeting.
func (s *MemoryStore) PutMeeting(m *models.Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[m.ID] = copyMeeting(m)
}

// PutGuest stores a copy of the guest.
func (s *MemoryStore) PutGuest(g *models.Guest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *g
	s.guests[g.MeetingID] = append(s.guests[g.MeetingID], &c)
}

// PutAgent stores a copy of the agent.
func (s *MemoryStore) PutAgent(a *models.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *a
	s.agents[a.ID] = &c
}

// Meeting returns a copy of the stored meeting or nil.
func (s *MemoryStore) Meeting(id string) *models.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.meetings[id]; ok {
		return copyMeeting(m)
	}
	return nil
}

func copyMeeting(m *models.Meeting) *models.Meeting {
	c := *m
	if m.Summary != nil {
		sum := *m.Summary
		sum.QA = slices.Clone(m.Summary.QA)
		c.Summary = &sum
	}
	return &c
}

func (s *MemoryStore) Get(_ context.Context, meetingID string) (*models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetings[meetingID]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	return copyMeeting(m), nil
}

func (s *MemoryStore) GetInStatus(_ context.Context, meetingID string, statuses []models.MeetingStatus) (*models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetings[meetingID]
	if !ok || !slices.Contains(statuses, m.Status) {
		return nil, domain.ErrMeetingNotFound
	}
	return copyMeeting(m), nil
}

func (s *MemoryStore) Update(_ context.Context, upd domain.MeetingUpdate) (*domain.MeetingUpdateResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetings[upd.ID]
	if !ok {
		return nil, false, nil
	}
	if upd.OwnerID != "" && m.UserID != upd.OwnerID {
		return nil, false, nil
	}
	if len(upd.FromStatuses) > 0 && !slices.Contains(upd.FromStatuses, m.Status) {
		return nil, false, nil
	}

	prev := m.Status
	if upd.Status != nil {
		m.Status = *upd.Status
	}
	if upd.StartedAt != nil {
		t := *upd.StartedAt
		m.StartedAt = &t
	}
	if upd.EndedAt != nil {
		t := *upd.EndedAt
		m.EndedAt = &t
	}
	if upd.RecordingURL != nil {
		u := *upd.RecordingURL
		m.RecordingURL = &u
	}
	if upd.TranscriptURL != nil {
		u := *upd.TranscriptURL
		m.TranscriptURL = &u
	}
	m.UpdatedAt = upd.UpdatedAt

	return &domain.MeetingUpdateResult{Meeting: copyMeeting(m), PreviousStatus: prev}, true, nil
}

func (s *MemoryStore) ClaimArtifactNotification(_ context.Context, meetingID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetings[meetingID]
	if !ok || !m.HasAllArtifacts() || m.ArtifactsNotifiedAt != nil {
		return false, nil
	}
	m.ArtifactsNotifiedAt = &at
	return true, nil
}

func (s *MemoryStore) ListFallbackCandidates(_ context.Context, artifact models.ArtifactKind, limit int) ([]*models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Meeting
	for _, m := range s.meetings {
		if m.Status != models.MeetingStatusCompleted {
			continue
		}
		if artifact == models.ArtifactRecording && m.HasRecording() {
			continue
		}
		if artifact == models.ArtifactTranscript && m.HasTranscript() {
			continue
		}
		out = append(out, copyMeeting(m))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].EndedAt, out[j].EndedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SaveSummary(_ context.Context, meetingID string, summary models.MeetingSummary) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetings[meetingID]
	if !ok {
		return false, domain.ErrMeetingNotFound
	}
	if m.Summary != nil {
		return false, nil
	}
	sum := summary
	sum.QA = slices.Clone(summary.QA)
	m.Summary = &sum
	return true, nil
}

func (s *MemoryStore) ListWithEmail(_ context.Context, meetingID string) ([]*models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Guest
	for _, g := range s.guests[meetingID] {
		if g.Email != nil && *g.Email != "" {
			c := *g
			out = append(out, &c)
		}
	}
	return out, nil
}

// GuestRepository returns a view of the store that satisfies domain.GuestRepository.
func (s *MemoryStore) GuestRepository() domain.GuestRepository { return memoryGuests{s} }

// AgentRepository returns a view of the store that satisfies domain.AgentRepository.
func (s *MemoryStore) AgentRepository() domain.AgentRepository { return memoryAgents{s} }

type memoryGuests struct{ s *MemoryStore }

func (g memoryGuests) ListWithEmail(ctx context.Context, meetingID string) ([]*models.Guest, error) {
	return g.s.ListWithEmail(ctx, meetingID)
}

type memoryAgents struct{ s *MemoryStore }

func (a memoryAgents) Get(_ context.Context, agentID string) (*models.Agent, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	ag, ok := a.s.agents[agentID]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	c := *ag
	return &c, nil
}

func (a memoryAgents) GetByUserID(_ context.Context, userID string) (*models.Agent, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var found *models.Agent
	for _, ag := range a.s.agents {
		if ag.UserID != userID {
			continue
		}
		if found == nil || ag.CreatedAt.Before(found.CreatedAt) {
			found = ag
		}
	}
	if found == nil {
		return nil, domain.ErrAgentNotFound
	}
	c := *found
	return &c, nil
}
