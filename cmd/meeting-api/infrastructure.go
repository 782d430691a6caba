// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/log/global"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
	"github.com/meetbridge/meeting-service/internal/infrastructure/email"
	"github.com/meetbridge/meeting-service/internal/infrastructure/llm"
	"github.com/meetbridge/meeting-service/internal/infrastructure/messaging"
	"github.com/meetbridge/meeting-service/internal/infrastructure/store"
	"github.com/meetbridge/meeting-service/internal/infrastructure/transcript"
	"github.com/meetbridge/meeting-service/internal/infrastructure/webhook"
	"github.com/meetbridge/meeting-service/internal/logging"
	"github.com/meetbridge/meeting-service/pkg/utils"
)

const gracefulShutdownSeconds = 25

// setupOTel installs the OpenTelemetry providers from the OTEL_* environment.
// When log export is enabled, records written through logHandler are also
// sent to the OTLP logs exporter.
func setupOTel(ctx context.Context, logHandler slog.Handler) (func(context.Context) error, error) {
	cfg := utils.OTelConfigFromEnv()
	shutdown, err := utils.SetupOTelSDKWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.LogsEnabled() {
		level := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
		logging.WithOTelLogs(logHandler, global.GetLoggerProvider(), cfg.ServiceName, level)
		slog.InfoContext(ctx, "exporting logs over OTLP", "protocol", cfg.Protocol)
	}
	return shutdown, nil
}

// newTranscriptFetcher builds the transcript client. Each fetch is a single
// request; failures surface to the caller without retrying.
func newTranscriptFetcher(env environment) domain.TranscriptFetcher {
	return transcript.NewHTTPFetcher(transcript.Config{
		Timeout:    env.TranscriptFetchTimeout,
		MaxRetries: -1,
	}, nil)
}

// setupDatabase opens the Postgres pool and applies the schema.
func setupDatabase(ctx context.Context, env environment) (*pgxpool.Pool, error) {
	pool, err := store.Open(ctx, env.DatabaseURL, env.DBInitWait)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "connected to database")
	return pool, nil
}

// setupNATS connects to NATS when NATS_URL is set. A nil connection disables
// lifecycle publication and the cancel subscription.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	if env.NATSURL == "" {
		slog.WarnContext(ctx, "NATS_URL not set, lifecycle events and cancel requests are disabled")
		return nil, nil
	}

	gracefulCloseWG.Add(1)
	conn, err := nats.Connect(
		env.NATSURL,
		nats.Name("meeting-api"),
		nats.DrainTimeout(env.NATSDrainTimeout),
		nats.MaxReconnects(-1),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if ctx.Err() != nil {
				// Expected graceful shutdown.
				gracefulCloseWG.Done()
				return
			}
			slog.ErrorContext(ctx, "NATS connection closed unexpectedly")
			gracefulCloseWG.Done()
			done <- os.Interrupt
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return conn, nil
}

// createNatsSubscriptions registers the message handlers of the service.
func createNatsSubscriptions(ctx context.Context, conn *nats.Conn, handler domain.MessageHandler) error {
	if conn == nil {
		return nil
	}
	_, err := messaging.Subscribe(ctx, conn, models.MeetingCancelSubject, models.MeetingsAPIQueue, handler)
	return err
}

// setupEmailService returns the SMTP service, or the no-op service when SMTP is not configured.
func setupEmailService(env environment) (domain.EmailService, error) {
	if env.SMTP.Host == "" {
		slog.Warn("SMTP_HOST not set, guest notifications are disabled")
		return email.NewNoOpService(), nil
	}
	svc, err := email.NewSMTPService(email.SMTPConfig{
		Host:     env.SMTP.Host,
		Port:     env.SMTP.Port,
		From:     env.SMTP.From,
		Username: env.SMTP.Username,
		Password: env.SMTP.Password,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// setupWebhookValidator returns the provider signature validator.
func setupWebhookValidator(env environment) domain.WebhookValidator {
	if env.WebhookSignatureDisabled {
		slog.Warn("webhook signature verification is disabled")
		return webhook.NewMockWebhookValidator()
	}
	return webhook.NewStreamWebhookValidator(env.StreamAPISecret)
}

// setupSummarizer creates the summarization model client.
func setupSummarizer(ctx context.Context, env environment) (domain.Summarizer, error) {
	summarizer, err := llm.NewGeminiSummarizer(ctx, llm.GeminiConfig{
		APIKey:  env.GeminiAPIKey,
		Model:   env.GeminiModel,
		Timeout: env.GeminiTimeout,
	})
	if err != nil {
		return nil, err
	}
	return summarizer, nil
}

// gracefulShutdown stops the HTTP server, drains NATS, closes the database and
// flushes telemetry, bounded by gracefulShutdownSeconds.
func gracefulShutdown(
	httpServer *http.Server,
	natsConn *nats.Conn,
	pool *pgxpool.Pool,
	otelShutdown func(context.Context) error,
	gracefulCloseWG *sync.WaitGroup,
	cancel context.CancelFunc,
) {
	slog.Info("graceful shutdown via signal")

	// Cancel the background context.
	cancel()

	ctx, cancelTimeout := context.WithTimeout(context.Background(), gracefulShutdownSeconds*time.Second)
	defer cancelTimeout()

	go func() {
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.With(logging.ErrKey, err).Error("http shutdown error")
		}
		// Decrement the wait group.
		gracefulCloseWG.Done()
	}()

	if natsConn != nil && !natsConn.IsClosed() && !natsConn.IsDraining() {
		slog.Info("draining NATS connections")
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
			natsConn.Close()
		}
	}

	waitCh := make(chan struct{})
	go func() {
		gracefulCloseWG.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-ctx.Done():
		slog.With(logging.ErrKey, ctx.Err()).Error("graceful shutdown timed out")
	}

	pool.Close()

	if err := otelShutdown(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
		slog.With(logging.ErrKey, err).Error("error shutting down OpenTelemetry")
	}

	slog.Info("graceful shutdown complete")
}
