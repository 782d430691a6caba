// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
	"github.com/meetbridge/meeting-service/internal/logging"
)

// ErrNotConnected is returned when publishing without a live NATS connection.
var ErrNotConnected = errors.New("nats connection is not established")

// INatsConn is a NATS connection interface needed for publishing.
type INatsConn interface {
	IsConnected() bool
	PublishMsg(msg *nats.Msg) error
}

// MessageBuilder is the builder for the message and sends it to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// Ensure MessageBuilder implements domain.LifecycleEventPublisher
var _ domain.LifecycleEventPublisher = (*MessageBuilder)(nil)

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// publish sends the message to the NATS server with the trace context in its headers.
func (m *MessageBuilder) publish(ctx context.Context, subject string, data []byte) error {
	if m.NatsConn == nil || !m.NatsConn.IsConnected() {
		slog.WarnContext(ctx, "not sending message, NATS is disconnected", "subject", subject)
		return ErrNotConnected
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(msg.Header))

	err := m.NatsConn.PublishMsg(msg)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// PublishLifecycleEvent publishes a committed meeting change on meetings.lifecycle.<status>.
func (m *MessageBuilder) PublishLifecycleEvent(ctx context.Context, event models.MeetingLifecycleEvent) error {
	dataBytes, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err)
		return err
	}

	return m.publish(ctx, models.LifecycleSubject(event.Status), dataBytes)
}
