// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/meetbridge/meeting-service/internal/logging"
)

// WebhookBodyContextKey is the context key for storing raw webhook body
type WebhookBodyContextKey struct{}

// WebhookBodyCaptureMiddleware reads the body of requests to path once, up to maxBytes,
// and stores the exact bytes in the request context for signature validation.
func WebhookBodyCaptureMiddleware(path string, maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != path {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			_ = r.Body.Close()
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					slog.WarnContext(r.Context(), "webhook body too large", "limit", tooLarge.Limit)
					http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
					return
				}
				slog.WarnContext(r.Context(), "failed to read webhook body", logging.ErrKey, err)
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}

			// Create a new reader with the same data for the next handler
			r.Body = io.NopCloser(bytes.NewReader(body))
			r = r.WithContext(context.WithValue(r.Context(), WebhookBodyContextKey{}, body))

			next.ServeHTTP(w, r)
		})
	}
}

// GetRawBodyFromContext extracts the raw body from the context
func GetRawBodyFromContext(ctx context.Context) ([]byte, bool) {
	body, ok := ctx.Value(WebhookBodyContextKey{}).([]byte)
	return body, ok
}
