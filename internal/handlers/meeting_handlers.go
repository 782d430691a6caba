// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
	"github.com/meetbridge/meeting-service/internal/logging"
)

// MeetingCanceller cancels meetings on behalf of their owner.
type MeetingCanceller interface {
	CancelMeeting(ctx context.Context, meetingID, ownerID string) (*models.Meeting, error)
	ServiceReady() bool
}

// MeetingHandler handles meeting-related messages from the CRUD tier.
type MeetingHandler struct {
	canceller MeetingCanceller
}

// NewMeetingHandler creates a new MeetingHandler.
func NewMeetingHandler(canceller MeetingCanceller) *MeetingHandler {
	return &MeetingHandler{canceller: canceller}
}

// HandlerReady reports whether the handler's services are ready.
func (s *MeetingHandler) HandlerReady() bool {
	return s.canceller != nil && s.canceller.ServiceReady()
}

// HandleMessage implements domain.MessageHandler interface
func (s *MeetingHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.MeetingCancelSubject: s.HandleMeetingCancel,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		s.respond(ctx, msg, nil)
		return
	}

	response, err := handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
		s.respond(ctx, msg, nil)
		return
	}

	s.respond(ctx, msg, response)
}

func (s *MeetingHandler) respond(ctx context.Context, msg domain.Message, response []byte) {
	if !msg.HasReply() {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
		return
	}
	if err := msg.Respond(response); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
		return
	}
	slog.DebugContext(ctx, "responded to NATS message", "response", string(response))
}

// HandleMeetingCancel cancels the meeting named in the request. Domain failures are
// returned to the requester in the reply's error field; only a reply that cannot be
// encoded is a handler error.
func (s *MeetingHandler) HandleMeetingCancel(ctx context.Context, msg domain.Message) ([]byte, error) {
	var req models.CancelMeetingRequest
	if err := json.Unmarshal(msg.Data(), &req); err != nil {
		slog.WarnContext(ctx, "invalid cancel request payload", logging.ErrKey, err)
		return encodeCancelReply(models.CancelMeetingReply{Error: "invalid request payload"})
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", req.MeetingID))

	if !s.HandlerReady() {
		return encodeCancelReply(models.CancelMeetingReply{Error: domain.ErrServiceUnavailable.Error()})
	}

	meeting, err := s.canceller.CancelMeeting(ctx, req.MeetingID, req.UserID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeInternal {
			slog.ErrorContext(ctx, "failed to cancel meeting", logging.ErrKey, err)
		} else {
			slog.InfoContext(ctx, "meeting not cancelled", logging.ErrKey, err)
		}
		return encodeCancelReply(models.CancelMeetingReply{Error: err.Error()})
	}

	return encodeCancelReply(models.CancelMeetingReply{Status: meeting.Status})
}

func encodeCancelReply(reply models.CancelMeetingReply) ([]byte, error) {
	data, err := json.Marshal(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cancel reply: %w", err)
	}
	return data, nil
}
