// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	goahttp "goa.design/goa/v3/http"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
	"github.com/meetbridge/meeting-service/internal/logging"
	"github.com/meetbridge/meeting-service/internal/middleware"
	"github.com/meetbridge/meeting-service/internal/service"
	"github.com/meetbridge/meeting-service/pkg/constants"
)

// webhookProcessor authenticates and applies provider webhooks.
type webhookProcessor interface {
	ProcessWebhookEvent(ctx context.Context, req service.WebhookRequest) (*service.WebhookResponse, error)
	ServiceReady() bool
}

// summaryReader returns a meeting's transcript summary.
type summaryReader interface {
	GetSummary(ctx context.Context, meetingID string) (*models.MeetingSummary, error)
	ServiceReady() bool
}

// guestMeetingReader returns the reduced meeting view for guests.
type guestMeetingReader interface {
	GetGuestMeeting(ctx context.Context, meetingID string) (*models.GuestMeetingView, error)
	ServiceReady() bool
}

// MeetingsAPI serves the HTTP surface of the meeting service.
type MeetingsAPI struct {
	webhooks webhookProcessor
	summary  summaryReader
	guests   guestMeetingReader
	health   domain.HealthChecker

	summaryCacheControl string
	guestCacheControl   string

	// vars returns the path parameters of a request routed by the muxer the API is mounted on.
	vars func(*http.Request) map[string]string
}

// NewMeetingsAPI creates a new MeetingsAPI.
func NewMeetingsAPI(
	webhooks webhookProcessor,
	summary summaryReader,
	guests guestMeetingReader,
	health domain.HealthChecker,
	summaryCacheControl string,
	guestCacheControl string,
) *MeetingsAPI {
	return &MeetingsAPI{
		webhooks:            webhooks,
		summary:             summary,
		guests:              guests,
		health:              health,
		summaryCacheControl: summaryCacheControl,
		guestCacheControl:   guestCacheControl,
	}
}

// Mount registers the API endpoints on mux.
func (s *MeetingsAPI) Mount(mux goahttp.Muxer) {
	s.vars = mux.Vars
	mux.Handle(http.MethodGet, "/livez", s.Livez)
	mux.Handle(http.MethodGet, "/readyz", s.Readyz)
	mux.Handle(http.MethodPost, constants.WebhookPath, s.Webhook)
	mux.Handle(http.MethodGet, constants.TranscriptPath, s.GetTranscriptSummary)
	mux.Handle(http.MethodGet, constants.GuestMeetingPath, s.GetGuestMeeting)
}

func (s *MeetingsAPI) meetingID(r *http.Request) string {
	if s.vars == nil {
		return ""
	}
	return s.vars(r)[constants.MeetingIDPathName]
}

// ServiceReady reports whether every service behind the API is wired.
func (s *MeetingsAPI) ServiceReady() bool {
	return s.webhooks.ServiceReady() && s.summary.ServiceReady() && s.guests.ServiceReady()
}

type errorBody struct {
	Error string `json:"error"`
}

type webhookBody struct {
	Status  string `json:"status"`
	Ignored bool   `json:"ignored,omitempty"`
}

// statusFromError maps a domain error category to an HTTP status code.
func statusFromError(err error) int {
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeConflict:
		return http.StatusConflict
	case domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the domain message of err, hiding unclassified internal detail.
func publicMessage(err error, status int) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(status)
	if err := enc.Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to write response body", logging.ErrKey, err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", logging.ErrKey, err, "status", status)
	} else {
		slog.DebugContext(ctx, "request rejected", logging.ErrKey, err, "status", status)
	}
	writeJSON(ctx, w, status, errorBody{Error: publicMessage(err, status)})
}

// Webhook handles signed provider events. The signature is checked against the raw body
// captured by the body capture middleware.
func (s *MeetingsAPI) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, ok := middleware.GetRawBodyFromContext(ctx)
	if !ok {
		writeError(ctx, w, domain.NewInternalError("webhook body was not captured"))
		return
	}

	resp, err := s.webhooks.ProcessWebhookEvent(ctx, service.WebhookRequest{
		Signature: r.Header.Get(constants.SignatureHeader),
		APIKey:    r.Header.Get(constants.APIKeyHeader),
		RawBody:   body,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, webhookBody{Status: resp.Status, Ignored: resp.Ignored})
}

// GetTranscriptSummary returns the meeting's summary and Q&A, generating them on first request.
func (s *MeetingsAPI) GetTranscriptSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := s.summary.GetSummary(ctx, s.meetingID(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	w.Header().Set(constants.CacheControlHeader, s.summaryCacheControl)
	writeJSON(ctx, w, http.StatusOK, summary)
}

// GetGuestMeeting returns the guest view of a meeting.
func (s *MeetingsAPI) GetGuestMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := s.guests.GetGuestMeeting(ctx, s.meetingID(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	w.Header().Set(constants.CacheControlHeader, s.guestCacheControl)
	writeJSON(ctx, w, http.StatusOK, view)
}

// Readyz checks if the service is able to take inbound requests.
func (s *MeetingsAPI) Readyz(w http.ResponseWriter, r *http.Request) {
	if !s.ServiceReady() {
		http.Error(w, domain.ErrServiceUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "readiness check failed", logging.ErrKey, err)
			http.Error(w, domain.ErrServiceUnavailable.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	_, _ = w.Write([]byte("OK\n"))
}

// Livez checks if the service is alive.
func (s *MeetingsAPI) Livez(w http.ResponseWriter, _ *http.Request) {
	// This always returns as long as the service is still running. As this
	// endpoint is expected to be used as a Kubernetes liveness check, this
	// service must likewise self-detect non-recoverable errors and
	// self-terminate.
	_, _ = w.Write([]byte("OK\n"))
}
