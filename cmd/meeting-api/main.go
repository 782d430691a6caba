// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the meeting service API that reconciles video provider webhooks into
// meeting lifecycle state, serves transcript summaries and handles NATS cancel requests.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/handlers"
	"github.com/meetbridge/meeting-service/internal/infrastructure/messaging"
	"github.com/meetbridge/meeting-service/internal/infrastructure/store"
	"github.com/meetbridge/meeting-service/internal/logging"
	"github.com/meetbridge/meeting-service/internal/observability/metrics"
	"github.com/meetbridge/meeting-service/internal/service"
)

func main() {
	env, err := parseEnv()
	if err != nil {
		slog.With(logging.ErrKey, err).Error("invalid configuration")
		os.Exit(1)
	}
	flags := parseFlags(env.Port)

	logHandler := logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	otelShutdown, err := setupOTel(ctx, logHandler)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry")
		return
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	pool, err := setupDatabase(ctx, env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up database")
		return
	}

	emailService, err := setupEmailService(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up email service")
		return
	}

	summarizer, err := setupSummarizer(ctx, env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up summarization model")
		return
	}

	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}
	var publisher domain.LifecycleEventPublisher
	if natsConn != nil {
		publisher = messaging.NewMessageBuilder(natsConn)
	}

	// Initialize repositories
	meetings := store.NewPostgresMeetingRepository(pool)
	guests := store.NewPostgresGuestRepository(pool)
	agents := store.NewPostgresAgentRepository(pool)

	// Initialize services
	serviceConfig := service.ServiceConfig{
		ProviderAPIKey:         env.StreamAPIKey,
		EmailConcurrency:       env.EmailConcurrency,
		FallbackCandidateLimit: env.FallbackCandidateLimit,
	}
	resolver := service.NewMeetingResolver(meetings, m, serviceConfig)
	notifier := service.NewArtifactNotifier(meetings, guests, agents, emailService, m, serviceConfig)
	reconciler := service.NewLifecycleReconciler(meetings, agents, resolver, notifier, publisher, m, serviceConfig)
	webhookService := service.NewWebhookService(setupWebhookValidator(env), reconciler, m, serviceConfig)
	summaryService := service.NewSummaryService(
		meetings,
		newTranscriptFetcher(env),
		summarizer,
		m,
		serviceConfig,
	)
	guestService := service.NewGuestMeetingService(meetings)

	// Initialize handlers
	meetingHandler := handlers.NewMeetingHandler(reconciler)

	api := NewMeetingsAPI(
		webhookService,
		summaryService,
		guestService,
		store.NewPoolHealthChecker(pool),
		env.summaryCacheControl(),
		env.guestCacheControl(),
	)

	httpServer := setupHTTPServer(flags, newRouter(api, registry), &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	if err := createNatsSubscriptions(ctx, natsConn, meetingHandler); err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, pool, otelShutdown, &gracefulCloseWG, cancel)
}
