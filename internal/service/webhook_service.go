// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
	"github.com/meetbridge/meeting-service/internal/logging"
	"github.com/meetbridge/meeting-service/internal/observability/metrics"
)

// WebhookRequest represents the webhook processing request
type WebhookRequest struct {
	Signature string
	APIKey    string
	RawBody   []byte
}

// WebhookResponse represents the webhook processing response
type WebhookResponse struct {
	Status  string
	Kind    models.WebhookEventKind
	Ignored bool
}

// Webhook outcomes, used as the metrics label.
const (
	webhookOutcomeProcessed = "processed"
	webhookOutcomeIgnored   = "ignored"
	webhookOutcomeRejected  = "rejected"
	webhookOutcomeFailed    = "failed"
)

// EventReconciler applies parsed provider events.
type EventReconciler interface {
	SessionStarted(ctx context.Context, event *models.SessionStartedEvent) error
	ParticipantLeft(ctx context.Context, event *models.ParticipantLeftEvent) error
	ArtifactReady(ctx context.Context, event models.ArtifactEvent) error
}

// WebhookService verifies, classifies and dispatches video provider webhooks.
type WebhookService struct {
	validator  domain.WebhookValidator
	reconciler EventReconciler
	metrics    *metrics.Metrics
	config     ServiceConfig
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(
	validator domain.WebhookValidator,
	reconciler EventReconciler,
	m *metrics.Metrics,
	config ServiceConfig,
) *WebhookService {
	return &WebhookService{
		validator:  validator,
		reconciler: reconciler,
		metrics:    m,
		config:     config,
	}
}

// ServiceReady checks if the service is ready to process requests
func (s *WebhookService) ServiceReady() bool {
	return s.validator != nil && s.reconciler != nil
}

// ProcessWebhookEvent authenticates the raw body and applies the event it carries.
// The payload is never interpreted before its signature has been verified.
func (s *WebhookService) ProcessWebhookEvent(ctx context.Context, req WebhookRequest) (*WebhookResponse, error) {
	if req.Signature == "" || req.APIKey == "" {
		s.metrics.RecordWebhookEvent(string(models.WebhookEventUnknown), webhookOutcomeRejected)
		return nil, domain.ErrMissingHeaders
	}

	if s.config.ProviderAPIKey != "" &&
		subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(s.config.ProviderAPIKey)) != 1 {
		s.metrics.RecordWebhookEvent(string(models.WebhookEventUnknown), webhookOutcomeRejected)
		slog.WarnContext(ctx, "webhook API key does not match")
		return nil, domain.ErrInvalidSignature
	}

	if !s.validator.Verify(req.RawBody, req.Signature) {
		s.metrics.RecordWebhookEvent(string(models.WebhookEventUnknown), webhookOutcomeRejected)
		slog.WarnContext(ctx, "webhook signature does not match")
		return nil, domain.ErrInvalidSignature
	}

	event, err := models.ParseWebhookEvent(req.RawBody)
	if err != nil {
		return s.parseFailure(ctx, err)
	}

	kind := event.Kind()
	ctx = logging.AppendCtx(ctx, slog.String("event_kind", string(kind)))

	switch ev := event.(type) {
	case *models.SessionStartedEvent:
		err = s.reconciler.SessionStarted(ctx, ev)
	case *models.ParticipantLeftEvent:
		err = s.reconciler.ParticipantLeft(ctx, ev)
	case *models.RecordingReadyEvent:
		err = s.reconciler.ArtifactReady(ctx, ev)
	case *models.TranscriptionReadyEvent:
		err = s.reconciler.ArtifactReady(ctx, ev)
	default:
		s.metrics.RecordWebhookEvent(string(kind), webhookOutcomeIgnored)
		eventType := ""
		if unknown, ok := ev.(*models.UnknownEvent); ok {
			eventType = unknown.Type
		}
		slog.DebugContext(ctx, "ignoring unhandled webhook event type", "event_type", eventType)
		return &WebhookResponse{Status: "ok", Kind: kind, Ignored: true}, nil
	}

	if err != nil {
		s.metrics.RecordWebhookEvent(string(kind), webhookOutcomeFailed)
		slog.ErrorContext(ctx, "failed to process webhook event", logging.ErrKey, err)
		return nil, err
	}

	s.metrics.RecordWebhookEvent(string(kind), webhookOutcomeProcessed)
	return &WebhookResponse{Status: "ok", Kind: kind}, nil
}

func (s *WebhookService) parseFailure(ctx context.Context, err error) (*WebhookResponse, error) {
	switch {
	case errors.Is(err, models.ErrEventInvalidArtifactURL):
		// not a real completion; acknowledged without mutation
		s.metrics.RecordWebhookEvent(string(models.WebhookEventUnknown), webhookOutcomeIgnored)
		slog.WarnContext(ctx, "artifact event without a usable URL, acknowledging without changes", logging.ErrKey, err)
		return &WebhookResponse{Status: "ok", Ignored: true}, nil
	case errors.Is(err, models.ErrEventMissingCorrelationID):
		s.metrics.RecordWebhookEvent(string(models.WebhookEventUnknown), webhookOutcomeRejected)
		return nil, domain.ErrMissingCorrelationID
	default:
		s.metrics.RecordWebhookEvent(string(models.WebhookEventUnknown), webhookOutcomeRejected)
		return nil, errors.Join(domain.ErrInvalidJSON, err)
	}
}
