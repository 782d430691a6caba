// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/meetbridge/meeting-service/internal/logging"
	"github.com/meetbridge/meeting-service/pkg/constants"
)

// flags are the command line flags for the meeting service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the meeting service.
type environment struct {
	Port        string        `env:"PORT" envDefault:"8080"`
	DatabaseURL string        `env:"DATABASE_URL,required,notEmpty"`
	DBInitWait  time.Duration `env:"DATABASE_INIT_TIMEOUT" envDefault:"30s"`

	NATSURL          string        `env:"NATS_URL"`
	NATSDrainTimeout time.Duration `env:"NATS_DRAIN_TIMEOUT" envDefault:"10s"`

	StreamAPIKey             string `env:"STREAM_API_KEY"`
	StreamAPISecret          string `env:"STREAM_API_SECRET"`
	WebhookSignatureDisabled bool   `env:"WEBHOOK_SIGNATURE_DISABLED" envDefault:"false"`

	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiTimeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"60s"`

	SMTP smtpEnvironment

	EmailConcurrency       int           `env:"EMAIL_CONCURRENCY" envDefault:"5"`
	FallbackCandidateLimit int           `env:"FALLBACK_CANDIDATE_LIMIT" envDefault:"5"`
	TranscriptFetchTimeout time.Duration `env:"TRANSCRIPT_FETCH_TIMEOUT" envDefault:"30s"`
	SummaryCacheMaxAge     time.Duration `env:"SUMMARY_CACHE_MAX_AGE" envDefault:"1h"`
	GuestCacheMaxAge       time.Duration `env:"GUEST_CACHE_MAX_AGE" envDefault:"5m"`
}

// smtpEnvironment holds the SMTP settings. Email is disabled when Host is empty.
type smtpEnvironment struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	From     string `env:"SMTP_FROM" envDefault:"Meetings <no-reply@meetbridge.dev>"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

// parseFlags parses command line flags for the meeting service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the meeting service
func parseEnv() (environment, error) {
	var e environment
	if err := env.Parse(&e); err != nil {
		return environment{}, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}
	if err := e.validate(); err != nil {
		return environment{}, err
	}
	return e, nil
}

func (e environment) validate() error {
	if !e.WebhookSignatureDisabled && e.StreamAPISecret == "" {
		return fmt.Errorf("STREAM_API_SECRET is required unless WEBHOOK_SIGNATURE_DISABLED is set")
	}
	if e.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if e.EmailConcurrency < 1 {
		return fmt.Errorf("EMAIL_CONCURRENCY must be at least 1, got %d", e.EmailConcurrency)
	}
	if e.FallbackCandidateLimit < 2 {
		return fmt.Errorf("FALLBACK_CANDIDATE_LIMIT must be at least 2, got %d", e.FallbackCandidateLimit)
	}
	return nil
}

// summaryCacheControl returns the Cache-Control value for summary responses.
func (e environment) summaryCacheControl() string {
	return constants.PublicCacheControl(e.SummaryCacheMaxAge)
}

// guestCacheControl returns the Cache-Control value for guest meeting responses.
func (e environment) guestCacheControl() string {
	return constants.PublicCacheControl(e.GuestCacheMaxAge)
}
