// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/meetings")
	t.Setenv("STREAM_API_SECRET", "secret")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
}

func TestParseEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	env, err := parseEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", env.Port)
	assert.Equal(t, "gemini-2.5-flash", env.GeminiModel)
	assert.Equal(t, 5, env.EmailConcurrency)
	assert.Equal(t, 5, env.FallbackCandidateLimit)
	assert.Equal(t, 30*time.Second, env.TranscriptFetchTimeout)
	assert.Equal(t, 587, env.SMTP.Port)
	assert.Empty(t, env.SMTP.Host)
	assert.False(t, env.WebhookSignatureDisabled)
	assert.Equal(t, "public, max-age=3600", env.summaryCacheControl())
	assert.Equal(t, "public, max-age=300", env.guestCacheControl())
}

func TestParseEnv_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("EMAIL_CONCURRENCY", "10")
	t.Setenv("SUMMARY_CACHE_MAX_AGE", "10m")

	env, err := parseEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", env.Port)
	assert.Equal(t, "smtp.example.com", env.SMTP.Host)
	assert.Equal(t, 2525, env.SMTP.Port)
	assert.Equal(t, 10, env.EmailConcurrency)
	assert.Equal(t, "public, max-age=600", env.summaryCacheControl())
}

func TestParseEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": ""}},
		{"missing secret", map[string]string{"STREAM_API_SECRET": ""}},
		{"missing gemini key", map[string]string{"GEMINI_API_KEY": ""}},
		{"zero concurrency", map[string]string{"EMAIL_CONCURRENCY": "0"}},
		{"fallback limit of one", map[string]string{"FALLBACK_CANDIDATE_LIMIT": "1"}},
		{"bad duration", map[string]string{"TRANSCRIPT_FETCH_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := parseEnv()
			assert.Error(t, err)
		})
	}
}

func TestParseEnv_SignatureDisabledNeedsNoSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STREAM_API_SECRET", "")
	t.Setenv("WEBHOOK_SIGNATURE_DISABLED", "true")

	env, err := parseEnv()
	require.NoError(t, err)
	assert.True(t, env.WebhookSignatureDisabled)
}
