// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockMessage implements domain.Message for testing. Subject and Data are fixed at
// construction; HasReply and Respond go through testify expectations.
type MockMessage struct {
	mock.Mock
	subject string
	data    []byte
}

// NewMockMessage creates a message on subject carrying data.
func NewMockMessage(subject string, data []byte) *MockMessage {
	return &MockMessage{subject: subject, data: data}
}

// NewMockJSONMessage creates a message on subject whose body is payload encoded as JSON.
func NewMockJSONMessage(subject string, payload any) *MockMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return NewMockMessage(subject, data)
}

func (m *MockMessage) Subject() string {
	return m.subject
}

func (m *MockMessage) Data() []byte {
	return m.data
}

func (m *MockMessage) HasReply() bool {
	return m.Called().Bool(0)
}

func (m *MockMessage) Respond(data []byte) error {
	return m.Called(data).Error(0)
}

// LastReply returns the data of the most recent Respond call, or nil.
func (m *MockMessage) LastReply() []byte {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == "Respond" {
			data, _ := m.Calls[i].Arguments.Get(0).([]byte)
			return data
		}
	}
	return nil
}
