// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesceString(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected string
	}{
		{"returns first non-empty string", []string{"", "", "hello", "world"}, "hello"},
		{"skips blank values", []string{"  ", "\t", "call-1"}, "call-1"},
		{"trims the winner", []string{" meeting-1 "}, "meeting-1"},
		{"returns empty string when all empty", []string{"", " ", ""}, ""},
		{"returns empty string when no arguments", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CoalesceString(tt.values...))
		})
	}
}
