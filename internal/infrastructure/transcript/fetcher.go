// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package transcript downloads transcript files from the video provider's artifact storage.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/meetbridge/meeting-service/internal/logging"
)

const (
	// DefaultTimeout bounds a single download attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBytes caps the transcript size read into memory.
	DefaultMaxBytes int64 = 16 << 20
	// Default retry configuration
	DefaultMaxRetries        = 2
	DefaultInitialBackoff    = 500 * time.Millisecond
	DefaultMaxBackoff        = 5 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// ErrTooLarge is returned when the transcript exceeds the configured size.
var ErrTooLarge = errors.New("transcript exceeds maximum size")

// StatusError reports a non-2xx response from the artifact host.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transcript download failed with status %d", e.StatusCode)
}

// Config holds the configuration for the fetcher.
type Config struct {
	Timeout  time.Duration
	MaxBytes int64
	// Optional: retry configuration. A negative MaxRetries disables retries.
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// HTTPFetcher implements domain.TranscriptFetcher over plain HTTP GETs of signed URLs.
type HTTPFetcher struct {
	httpClient *http.Client
	config     Config
}

// NewHTTPFetcher creates a fetcher. base may be nil to use http.DefaultTransport.
func NewHTTPFetcher(config Config, base http.RoundTripper) *HTTPFetcher {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultMaxBytes
	}
	switch {
	case config.MaxRetries == 0:
		config.MaxRetries = DefaultMaxRetries
	case config.MaxRetries < 0:
		config.MaxRetries = 0
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if config.BackoffMultiplier <= 0 {
		config.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if base == nil {
		base = http.DefaultTransport
	}

	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		config: config,
	}
}

// FetchTranscript returns the body of the transcript at url.
// Network errors, 5xx and 429 responses are retried with backoff.
func (f *HTTPFetcher) FetchTranscript(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= f.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := f.backoff(attempt - 1)
			slog.WarnContext(ctx, "retrying transcript download",
				"attempt", attempt,
				"delay_ms", delay.Milliseconds(),
				logging.ErrKey, lastErr,
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		content, statusCode, err := f.get(ctx, url)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !shouldRetry(ctx, statusCode, err) {
			break
		}
	}
	return "", lastErr
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create transcript request: %w", err)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("transcript request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", resp.StatusCode, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes+1))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read transcript body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBytes {
		return "", resp.StatusCode, ErrTooLarge
	}

	slog.DebugContext(ctx, "transcript downloaded",
		"status_code", resp.StatusCode,
		"content_length", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return string(body), resp.StatusCode, nil
}

// shouldRetry determines if an error or HTTP status code should be retried
func shouldRetry(ctx context.Context, statusCode int, err error) bool {
	if ctx.Err() != nil || errors.Is(err, ErrTooLarge) {
		return false
	}
	if statusCode == 0 {
		return err != nil
	}
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

// backoff returns the exponential delay for a retry attempt with ±25% jitter.
func (f *HTTPFetcher) backoff(attempt int) time.Duration {
	d := float64(f.config.InitialBackoff) * math.Pow(f.config.BackoffMultiplier, float64(attempt))
	if d > float64(f.config.MaxBackoff) {
		d = float64(f.config.MaxBackoff)
	}
	d += d * 0.25 * (rand.Float64()*2 - 1)
	if time.Duration(d) < f.config.InitialBackoff {
		return f.config.InitialBackoff
	}
	return time.Duration(d)
}
