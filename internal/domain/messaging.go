// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/meetbridge/meeting-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// LifecycleEventPublisher publishes committed meeting lifecycle changes.
type LifecycleEventPublisher interface {
	PublishLifecycleEvent(ctx context.Context, event models.MeetingLifecycleEvent) error
}
