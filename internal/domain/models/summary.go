// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"regexp"
	"strings"
)

// Markers of the textual format the summarization model is asked to produce.
const (
	SummarySectionMarker = "SUMMARY:"
	QASectionMarker      = "QUESTIONS_AND_ANSWERS:"
)

var (
	questionLine = regexp.MustCompile(`^Q(\d+):\s*(.*)$`)
	answerLine   = regexp.MustCompile(`^A(\d+):\s*(.*)$`)
)

// QAPair is one generated question with its answer.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MeetingSummary is the cached result of summarizing a meeting transcript.
type MeetingSummary struct {
	Summary string   `json:"summary"`
	QA      []QAPair `json:"qa"`
}

// BuildSummaryPrompt returns the model prompt for a transcript.
func BuildSummaryPrompt(transcript string) string {
	var b strings.Builder
	b.WriteString("You are given the transcript of a meeting.\n")
	b.WriteString("Write a concise summary of the meeting, then 3 to 5 questions a participant might ask about it, each with its answer.\n")
	b.WriteString("Reply using exactly this format and nothing else:\n\n")
	b.WriteString(SummarySectionMarker)
	b.WriteString("\n<summary text>\n\n")
	b.WriteString(QASectionMarker)
	b.WriteString("\nQ1: <question>\nA1: <answer>\nQ2: <question>\nA2: <answer>\n\n")
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	return b.String()
}

// ParseSummaryResponse parses model output in the BuildSummaryPrompt format.
// Lines in the Q&A section that do not carry a Q<n>: or A<n>: prefix are dropped,
// a question without a following answer is dropped, and an answer without a
// preceding question is dropped. The result always has a non-nil QA slice.
func ParseSummaryResponse(text string) MeetingSummary {
	summaryPart, qaPart, _ := strings.Cut(text, QASectionMarker)

	summaryPart = strings.TrimSpace(summaryPart)
	summaryPart = strings.TrimSpace(strings.TrimPrefix(summaryPart, SummarySectionMarker))

	out := MeetingSummary{Summary: summaryPart, QA: []QAPair{}}

	var pending *string
	for _, line := range strings.Split(qaPart, "\n") {
		line = strings.TrimSpace(line)
		if m := questionLine.FindStringSubmatch(line); m != nil {
			q := strings.TrimSpace(m[2])
			pending = &q
			continue
		}
		if m := answerLine.FindStringSubmatch(line); m != nil && pending != nil {
			out.QA = append(out.QA, QAPair{Question: *pending, Answer: strings.TrimSpace(m[2])})
			pending = nil
		}
	}

	return out
}
