// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"github.com/meetbridge/meeting-service/internal/domain"
)

// NatsMessage adapts a received *nats.Msg to domain.Message.
type NatsMessage struct {
	msg *nats.Msg
}

// Ensure NatsMessage implements domain.Message
var _ domain.Message = (*NatsMessage)(nil)

// NewNatsMessage wraps msg.
func NewNatsMessage(msg *nats.Msg) *NatsMessage {
	return &NatsMessage{msg: msg}
}

// Subject returns the subject the message was received on.
func (m *NatsMessage) Subject() string {
	return m.msg.Subject
}

// Data returns the message payload.
func (m *NatsMessage) Data() []byte {
	return m.msg.Data
}

// Respond replies to the requester.
func (m *NatsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

// HasReply reports whether the sender expects a reply.
func (m *NatsMessage) HasReply() bool {
	return m.msg.Reply != ""
}

// Context returns ctx carrying the trace context propagated in the message headers.
func (m *NatsMessage) Context(ctx context.Context) context.Context {
	if m.msg.Header == nil {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, headerCarrier(m.msg.Header))
}
