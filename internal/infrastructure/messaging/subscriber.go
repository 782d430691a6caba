// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/meetbridge/meeting-service/internal/domain"
)

// tracerName is the instrumentation name for the messaging package.
const tracerName = "github.com/meetbridge/meeting-service/internal/infrastructure/messaging"

// INatsSubscriber is the part of a NATS connection needed to register handlers.
type INatsSubscriber interface {
	QueueSubscribe(subj, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Subscribe registers handler for subject within the queue group, so each message
// is handled by one service replica.
func Subscribe(ctx context.Context, conn INatsSubscriber, subject, queue string, handler domain.MessageHandler) (*nats.Subscription, error) {
	sub, err := conn.QueueSubscribe(subject, queue, Dispatch(ctx, handler))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	slog.DebugContext(ctx, "subscribed to NATS subject", "subject", subject, "queue", queue)
	return sub, nil
}

// Dispatch returns the NATS callback that hands messages to handler within a consumer span.
func Dispatch(ctx context.Context, handler domain.MessageHandler) nats.MsgHandler {
	return func(msg *nats.Msg) {
		message := NewNatsMessage(msg)
		msgCtx, span := otel.Tracer(tracerName).Start(message.Context(ctx), "nats.receive "+msg.Subject,
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				attribute.String("messaging.system", "nats"),
				attribute.String("messaging.destination.name", msg.Subject),
			),
		)
		defer span.End()

		handler.HandleMessage(msgCtx, message)
	}
}
