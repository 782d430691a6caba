// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildEmailMessage(t *testing.T) {
	config := SMTPConfig{
		Host: "localhost",
		Port: 1025,
		From: "noreply@example.com",
	}

	tests := []struct {
		name        string
		recipient   string
		subject     string
		wantSubject string
		htmlContent string
		textContent string
	}{
		{
			name:        "ascii subject",
			recipient:   "user@example.com",
			subject:     "Weekly sync",
			wantSubject: "Weekly sync",
			htmlContent: "<h1>Test HTML</h1>",
			textContent: "Test Text",
		},
		{
			name:        "non-ascii subject is encoded",
			recipient:   "user@example.com",
			subject:     "Réunion",
			wantSubject: "=?utf-8?q?R=C3=A9union?=",
			htmlContent: "<p>Bonjour</p>",
			textContent: "Bonjour\nà bientôt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := buildEmailMessage(tt.recipient, tt.subject, tt.htmlContent, tt.textContent, config)

			assert.Contains(t, message, "From: noreply@example.com")
			assert.Contains(t, message, fmt.Sprintf("To: %s", tt.recipient))
			assert.Contains(t, message, fmt.Sprintf("Subject: %s\r\n", tt.wantSubject))
			assert.Contains(t, message, "MIME-Version: 1.0")
			assert.Contains(t, message, "Content-Type: multipart/alternative")
			assert.Contains(t, message, "Content-Type: text/plain")
			assert.Contains(t, message, "Content-Type: text/html")
			assert.Contains(t, message, tt.htmlContent)
			assert.Contains(t, message, strings.ReplaceAll(tt.textContent, "\n", "\r\n"))
			assert.True(t, strings.HasSuffix(message, "--"+messageBoundary+"--\r\n"))
		})
	}
}

func TestSendEmailMessage(t *testing.T) {
	t.Run("connection error", func(t *testing.T) {
		config := SMTPConfig{
			Host: "127.0.0.1",
			Port: 1,
			From: "noreply@example.com",
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		err := sendEmailMessage(ctx, "user@example.com", "Test message", config)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send email")
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := NewMockSMTPServerForTesting(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := sendEmailMessage(ctx, "user@example.com", "Test message", server.Config(t))
		assert.Error(t, err)
		assert.Empty(t, server.Messages())
	})

	t.Run("with authentication configuration", func(t *testing.T) {
		// the mock server does not advertise AUTH, so authenticated delivery must fail
		server := NewMockSMTPServerForTesting(t, nil)
		config := server.Config(t)
		config.Username = "testuser"
		config.Password = "testpass"

		err := sendEmailMessage(context.Background(), "user@example.com", "Test message", config)
		assert.Error(t, err)
		assert.Empty(t, server.Messages())
	})

	t.Run("delivers dot-stuffed content", func(t *testing.T) {
		server := NewMockSMTPServerForTesting(t, nil)

		err := sendEmailMessage(context.Background(), "user@example.com", "line one\r\n.hidden\r\n", server.Config(t))
		assert.NoError(t, err)
		if assert.Len(t, server.Messages(), 1) {
			assert.Equal(t, "line one\r\n.hidden\r\n", server.Messages()[0])
		}
	})
}
