// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	goahttp "goa.design/goa/v3/http"

	"github.com/meetbridge/meeting-service/internal/logging"
	"github.com/meetbridge/meeting-service/internal/middleware"
	"github.com/meetbridge/meeting-service/pkg/constants"
)

// newRouter mounts the API on a goa muxer and wraps it with the HTTP middleware.
func newRouter(api *MeetingsAPI, gatherer prometheus.Gatherer) http.Handler {
	mux := goahttp.NewMuxer()
	api.Mount(mux)
	mux.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP)

	var handler http.Handler = mux

	// Note: Order matters - RequestID should come first in the chain,
	// so it is the last middleware added since they are executed in reverse order.
	handler = middleware.WebhookBodyCaptureMiddleware(constants.WebhookPath, constants.MaxWebhookBodyBytes)(handler)
	handler = chimiddleware.Recoverer(handler)
	handler = middleware.RequestLoggerMiddleware()(handler)
	handler = chimiddleware.RealIP(handler)
	handler = chimiddleware.RequestID(handler)

	return handler
}

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(flags flags, handler http.Handler, gracefulCloseWG *sync.WaitGroup) *http.Server {
	handler = otelhttp.NewHandler(handler, "meeting-api",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/livez" && r.URL.Path != "/readyz" && r.URL.Path != "/metrics"
		}),
	)

	// Set up http listener in a goroutine using provided command line parameters.
	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}
