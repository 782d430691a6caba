// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, model, contents, config)
	resp, _ := args.Get(0).(*genai.GenerateContentResponse)
	return resp, args.Error(1)
}

func reply(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}},
	}
}

func promptOf(contents []*genai.Content) string {
	if len(contents) != 1 || len(contents[0].Parts) != 1 {
		return ""
	}
	return contents[0].Parts[0].Text
}

func TestGeminiSummarizer_GenerateText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		callErr error
		want    string
		wantErr error
	}{
		{
			name: "joins text parts",
			resp: reply(&genai.Part{Text: "SUMMARY: Shipped."}, &genai.Part{Text: "\nQ&A:\nQ1: What?\nA1: That.\n"}),
			want: "SUMMARY: Shipped.\nQ&A:\nQ1: What?\nA1: That.",
		},
		{
			name: "skips thought parts",
			resp: reply(&genai.Part{Text: "thinking", Thought: true}, &genai.Part{Text: "answer"}),
			want: "answer",
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "blank text",
			resp:    reply(&genai.Part{Text: "  \n"}),
			wantErr: ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{}
			gen.On("GenerateContent", mock.Anything, DefaultModel,
				mock.MatchedBy(func(c []*genai.Content) bool { return promptOf(c) == "summarize this" }),
				(*genai.GenerateContentConfig)(nil)).
				Return(tt.resp, tt.callErr)

			s := newGeminiSummarizer(gen, GeminiConfig{})
			got, err := s.GenerateText(context.Background(), "summarize this")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			gen.AssertExpectations(t)
		})
	}
}

func TestGeminiSummarizer_CallError(t *testing.T) {
	gen := &mockGenerator{}
	upstream := errors.New("quota exceeded")
	gen.On("GenerateContent", mock.Anything, "gemini-pro", mock.Anything, mock.Anything).Return(nil, upstream)

	s := newGeminiSummarizer(gen, GeminiConfig{Model: "gemini-pro"})
	_, err := s.GenerateText(context.Background(), "p")
	assert.ErrorIs(t, err, upstream)
}

func TestGeminiSummarizer_Timeout(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateContent",
		mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := ctx.Deadline()
			return ok
		}),
		mock.Anything, mock.Anything, mock.Anything).
		Return(reply(&genai.Part{Text: "ok"}), nil)

	s := newGeminiSummarizer(gen, GeminiConfig{Timeout: time.Minute})
	got, err := s.GenerateText(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestNewGeminiSummarizer_RequiresKey(t *testing.T) {
	_, err := NewGeminiSummarizer(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}
