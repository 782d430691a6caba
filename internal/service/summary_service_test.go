// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/mocks"
	"github.com/meetbridge/meeting-service/internal/domain/models"
	"github.com/meetbridge/meeting-service/internal/observability/metrics"
	"github.com/meetbridge/meeting-service/pkg/utils"
)

const modelReply = "SUMMARY:\nRoadmap agreed.\nQUESTIONS_AND_ANSWERS:\nQ1: What was agreed?\nA1: The roadmap.\nQ2: Who owns it?\nnobody said\nQ3: When?\nA3: Next week."

func transcriptMeeting() *models.Meeting {
	m := newMeeting("m1", models.MeetingStatusCompleted)
	m.TranscriptURL = utils.Ptr("https://cdn/t.jsonl")
	return m
}

func newSummaryService(store domain.MeetingRepository, fetcher *mocks.MockTranscriptFetcher, summarizer *mocks.MockSummarizer) *SummaryService {
	return NewSummaryService(store, fetcher, summarizer, metrics.NewMetrics(prometheus.NewRegistry()), ServiceConfig{})
}

func TestGetSummary_GeneratesOnceThenCaches(t *testing.T) {
	store := mocks.NewMemoryStore()
	store.PutMeeting(transcriptMeeting())

	fetcher := &mocks.MockTranscriptFetcher{}
	fetcher.On("FetchTranscript", mock.Anything, "https://cdn/t.jsonl").Return("alice: hello", nil).Once()
	summarizer := &mocks.MockSummarizer{}
	summarizer.On("GenerateText", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return assert.ObjectsAreEqual(models.BuildSummaryPrompt("alice: hello"), prompt)
	})).Return(modelReply, nil).Once()

	svc := newSummaryService(store, fetcher, summarizer)
	ctx := context.Background()

	first, err := svc.GetSummary(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Roadmap agreed.", first.Summary)
	assert.Equal(t, []models.QAPair{
		{Question: "What was agreed?", Answer: "The roadmap."},
		{Question: "When?", Answer: "Next week."},
	}, first.QA)

	second, err := svc.GetSummary(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	fetcher.AssertExpectations(t)
	summarizer.AssertNumberOfCalls(t, "GenerateText", 1)
	assert.NotNil(t, store.Meeting("m1").Summary)
}

func TestGetSummary_ExistingSummaryIsReturnedUnchanged(t *testing.T) {
	store := mocks.NewMemoryStore()
	m := transcriptMeeting()
	m.Summary = &models.MeetingSummary{Summary: "cached", QA: []models.QAPair{{Question: "q", Answer: "a"}}}
	store.PutMeeting(m)

	fetcher := &mocks.MockTranscriptFetcher{}
	summarizer := &mocks.MockSummarizer{}
	svc := newSummaryService(store, fetcher, summarizer)

	got, err := svc.GetSummary(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, m.Summary, got)
	fetcher.AssertNotCalled(t, "FetchTranscript", mock.Anything, mock.Anything)
	summarizer.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}

func TestGetSummary_Errors(t *testing.T) {
	fetchErr := errors.New("403 forbidden")
	modelErr := errors.New("quota exceeded")

	tests := []struct {
		name      string
		meeting   *models.Meeting
		fetch     func(*mocks.MockTranscriptFetcher)
		summarize func(*mocks.MockSummarizer)
		wantErr   error
		wantType  domain.ErrorType
	}{
		{
			name:     "unknown meeting",
			wantErr:  domain.ErrMeetingNotFound,
			wantType: domain.ErrorTypeNotFound,
		},
		{
			name:     "transcript not ready",
			meeting:  newMeeting("m1", models.MeetingStatusCompleted),
			wantErr:  domain.ErrTranscriptNotReady,
			wantType: domain.ErrorTypeNotFound,
		},
		{
			name:    "transcript fetch fails",
			meeting: transcriptMeeting(),
			fetch: func(f *mocks.MockTranscriptFetcher) {
				f.On("FetchTranscript", mock.Anything, mock.Anything).Return("", fetchErr)
			},
			wantErr:  domain.ErrTranscriptFetch,
			wantType: domain.ErrorTypeInternal,
		},
		{
			name:    "model call fails",
			meeting: transcriptMeeting(),
			fetch: func(f *mocks.MockTranscriptFetcher) {
				f.On("FetchTranscript", mock.Anything, mock.Anything).Return("text", nil)
			},
			summarize: func(s *mocks.MockSummarizer) {
				s.On("GenerateText", mock.Anything, mock.Anything).Return("", modelErr)
			},
			wantErr:  domain.ErrSummaryGeneration,
			wantType: domain.ErrorTypeInternal,
		},
		{
			name:    "model returns nothing usable",
			meeting: transcriptMeeting(),
			fetch: func(f *mocks.MockTranscriptFetcher) {
				f.On("FetchTranscript", mock.Anything, mock.Anything).Return("text", nil)
			},
			summarize: func(s *mocks.MockSummarizer) {
				s.On("GenerateText", mock.Anything, mock.Anything).Return("  \n", nil)
			},
			wantErr:  domain.ErrSummaryGeneration,
			wantType: domain.ErrorTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMemoryStore()
			if tt.meeting != nil {
				store.PutMeeting(tt.meeting)
			}
			fetcher := &mocks.MockTranscriptFetcher{}
			summarizer := &mocks.MockSummarizer{}
			if tt.fetch != nil {
				tt.fetch(fetcher)
			}
			if tt.summarize != nil {
				tt.summarize(summarizer)
			}

			_, err := newSummaryService(store, fetcher, summarizer).GetSummary(context.Background(), "m1")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantType, domain.GetErrorType(err))
			if tt.meeting != nil {
				assert.Nil(t, store.Meeting("m1").Summary, "nothing is persisted on failure")
			}
		})
	}
}

func TestGetSummary_LostPersistRaceReturnsStoredSummary(t *testing.T) {
	repo := &mocks.MockMeetingRepository{}
	stored := transcriptMeeting()
	stored.Summary = &models.MeetingSummary{Summary: "written by another replica", QA: []models.QAPair{}}

	repo.On("Get", mock.Anything, "m1").Return(transcriptMeeting(), nil).Twice()
	repo.On("SaveSummary", mock.Anything, "m1", mock.Anything).Return(false, nil).Once()
	repo.On("Get", mock.Anything, "m1").Return(stored, nil).Once()

	fetcher := &mocks.MockTranscriptFetcher{}
	fetcher.On("FetchTranscript", mock.Anything, mock.Anything).Return("text", nil)
	summarizer := &mocks.MockSummarizer{}
	summarizer.On("GenerateText", mock.Anything, mock.Anything).Return(modelReply, nil)

	got, err := newSummaryService(repo, fetcher, summarizer).GetSummary(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "written by another replica", got.Summary)
	repo.AssertExpectations(t)
}

func TestGetSummary_ConcurrentRequestsShareOneModelCall(t *testing.T) {
	store := mocks.NewMemoryStore()
	store.PutMeeting(transcriptMeeting())

	release := make(chan struct{})
	fetcher := &mocks.MockTranscriptFetcher{}
	fetcher.On("FetchTranscript", mock.Anything, mock.Anything).
		WaitUntil(time.After(50*time.Millisecond)).
		Return("text", nil)
	summarizer := &mocks.MockSummarizer{}
	summarizer.On("GenerateText", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(modelReply, nil)

	svc := newSummaryService(store, fetcher, summarizer)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*models.MeetingSummary, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.GetSummary(context.Background(), "m1")
			assert.NoError(t, err)
			results[i] = got
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "Roadmap agreed.", r.Summary)
	}
	summarizer.AssertNumberOfCalls(t, "GenerateText", 1)
}

func TestGuestMeetingService_GetGuestMeeting(t *testing.T) {
	store := mocks.NewMemoryStore()
	m := meetingWithArtifacts()
	store.PutMeeting(m)
	svc := NewGuestMeetingService(store)

	view, err := svc.GetGuestMeeting(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", view.ID)
	assert.Equal(t, "https://cdn/r.mp4", *view.RecordingURL)
	assert.Equal(t, "We shipped it.", view.Summary.Summary)

	_, err = svc.GetGuestMeeting(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)

	_, err = svc.GetGuestMeeting(context.Background(), "")
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}
