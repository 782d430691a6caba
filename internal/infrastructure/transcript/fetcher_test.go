// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package transcript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestHTTPFetcher_FetchTranscript(t *testing.T) {
	const body = `{"speaker_id":"u1","text":"hello","type":"speech"}` + "\n"

	tests := []struct {
		name      string
		statuses  []int
		wantErr   bool
		wantCode  int
		wantCalls int32
	}{
		{name: "ok", statuses: []int{200}, wantCalls: 1},
		{name: "retries server errors", statuses: []int{503, 502, 200}, wantCalls: 3},
		{name: "retries rate limit", statuses: []int{429, 200}, wantCalls: 2},
		{name: "gives up after max retries", statuses: []int{500, 500, 500, 500}, wantErr: true, wantCode: 500, wantCalls: 3},
		{name: "client error is not retried", statuses: []int{403}, wantErr: true, wantCode: 403, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				n := calls.Add(1)
				status := tt.statuses[min(int(n)-1, len(tt.statuses)-1)]
				w.WriteHeader(status)
				if status == http.StatusOK {
					_, _ = w.Write([]byte(body))
				}
			}))
			defer srv.Close()

			f := NewHTTPFetcher(fastConfig(), nil)
			got, err := f.FetchTranscript(context.Background(), srv.URL+"/t.jsonl?sig=abc")

			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantErr {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.wantCode, statusErr.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, body, got)
		})
	}
}

func TestHTTPFetcher_TooLarge(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	cfg := fastConfig()
	cfg.MaxBytes = 32
	_, err := NewHTTPFetcher(cfg, nil).FetchTranscript(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	_, err := NewHTTPFetcher(fastConfig(), nil).FetchTranscript(context.Background(), "://bad")
	assert.Error(t, err)
}

func TestHTTPFetcher_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPFetcher(fastConfig(), nil).FetchTranscript(ctx, srv.URL)
	assert.Error(t, err)
}

func TestShouldRetry(t *testing.T) {
	ctx := context.Background()
	assert.True(t, shouldRetry(ctx, 0, assert.AnError))
	assert.True(t, shouldRetry(ctx, 500, &StatusError{StatusCode: 500}))
	assert.True(t, shouldRetry(ctx, 429, &StatusError{StatusCode: 429}))
	assert.False(t, shouldRetry(ctx, 404, &StatusError{StatusCode: 404}))
	assert.False(t, shouldRetry(ctx, 200, ErrTooLarge))
}

func TestHTTPFetcher_BackoffBounds(t *testing.T) {
	f := NewHTTPFetcher(Config{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second}, nil)
	for attempt := range 10 {
		d := f.backoff(attempt)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 1250*time.Millisecond)
	}
}
