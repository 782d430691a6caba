// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSummaryPrompt(t *testing.T) {
	prompt := BuildSummaryPrompt("alice: hello\nbob: hi")
	assert.Contains(t, prompt, SummarySectionMarker)
	assert.Contains(t, prompt, QASectionMarker)
	assert.Contains(t, prompt, "3 to 5 questions")
	assert.Contains(t, prompt, "alice: hello\nbob: hi")
}

func TestParseSummaryResponse(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		wantSummary string
		wantQA      []QAPair
	}{
		{
			name: "well formed",
			response: "SUMMARY:\nThe team agreed on the Q3 roadmap.\n\nQUESTIONS_AND_ANSWERS:\n" +
				"Q1: What was agreed?\nA1: The roadmap.\nQ2: Who owns it?\nA2: Alice.\n",
			wantSummary: "The team agreed on the Q3 roadmap.",
			wantQA: []QAPair{
				{Question: "What was agreed?", Answer: "The roadmap."},
				{Question: "Who owns it?", Answer: "Alice."},
			},
		},
		{
			name: "missing answer prefix drops only that pair",
			response: "SUMMARY: Short.\nQUESTIONS_AND_ANSWERS:\n" +
				"Q1: First?\nA1: One.\nQ2: Second?\nThe answer is two.\nQ3: Third?\nA3: Three.",
			wantSummary: "Short.",
			wantQA: []QAPair{
				{Question: "First?", Answer: "One."},
				{Question: "Third?", Answer: "Three."},
			},
		},
		{
			name:        "orphan answer is dropped",
			response:    "S\nQUESTIONS_AND_ANSWERS:\nA1: nobody asked\nQ2: Asked?\nA2: Yes.",
			wantSummary: "S",
			wantQA:      []QAPair{{Question: "Asked?", Answer: "Yes."}},
		},
		{
			name:        "no qa section",
			response:    "Just a summary with no questions.",
			wantSummary: "Just a summary with no questions.",
			wantQA:      []QAPair{},
		},
		{
			name:        "indented and markdown noise",
			response:    "SUMMARY:\nok\nQUESTIONS_AND_ANSWERS:\n  Q1: Why?  \n  A1: Because.  \n**Notes**\n- bullet",
			wantSummary: "ok",
			wantQA:      []QAPair{{Question: "Why?", Answer: "Because."}},
		},
		{
			name:        "empty",
			response:    "",
			wantSummary: "",
			wantQA:      []QAPair{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSummaryResponse(tt.response)
			assert.Equal(t, tt.wantSummary, got.Summary)
			assert.Equal(t, tt.wantQA, got.QA)
		})
	}
}

func TestMeetingSummary_JSONShape(t *testing.T) {
	data, err := json.Marshal(ParseSummaryResponse("only text"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"only text","qa":[]}`, string(data))
}
