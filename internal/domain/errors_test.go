// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation},
		{"unauthorized", ErrInvalidSignature, ErrorTypeUnauthorized},
		{"not found", ErrMeetingNotFound, ErrorTypeNotFound},
		{"wrapped not found", fmt.Errorf("resolving call abc: %w", ErrAmbiguousMeeting), ErrorTypeNotFound},
		{"conflict", ErrIllegalTransition, ErrorTypeConflict},
		{"unavailable", ErrServiceUnavailable, ErrorTypeUnavailable},
		{"plain error defaults to internal", errors.New("boom"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorType(tt.err))
		})
	}
}

func TestDomainError_WrapsUnderlying(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError("failed to update meeting", cause)

	assert.Equal(t, "failed to update meeting: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrMissingHeaders,
		ErrInvalidJSON,
		ErrMissingCorrelationID,
		ErrInvalidSignature,
		ErrMeetingNotFound,
		ErrAgentNotFound,
		ErrAmbiguousMeeting,
		ErrTranscriptNotReady,
		ErrIllegalTransition,
		ErrTranscriptFetch,
		ErrSummaryGeneration,
		ErrServiceUnavailable,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v and %v should be distinct", a, b)
			}
		}
	}
}
