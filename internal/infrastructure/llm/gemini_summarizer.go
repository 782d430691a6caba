// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package llm holds the summarization model client.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model replies without any text.
var ErrEmptyResponse = errors.New("empty response from summarization model")

// contentGenerator is the subset of genai.Models used by the summarizer.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiSummarizer implements domain.Summarizer on the Gemini API.
type GeminiSummarizer struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewGeminiSummarizer creates a Gemini client. Requests go through an instrumented transport.
func NewGeminiSummarizer(ctx context.Context, config GeminiConfig) (*GeminiSummarizer, error) {
	if config.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiSummarizer(client.Models, config), nil
}

func newGeminiSummarizer(models contentGenerator, config GeminiConfig) *GeminiSummarizer {
	model := config.Model
	if model == "" {
		model = DefaultModel
	}
	return &GeminiSummarizer{
		models:  models,
		model:   model,
		timeout: config.Timeout,
	}
}

// GenerateText sends the prompt as a single user turn and returns the reply text.
func (g *GeminiSummarizer) GenerateText(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}

	slog.DebugContext(ctx, "summarization model replied",
		"model", g.model,
		"response_length", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// responseText joins the text parts of the first candidate, skipping thought parts.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}
