// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package metrics provides Prometheus metrics for the meeting service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meeting_service"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Webhook metrics
	WebhookEvents *prometheus.CounterVec

	// Reconciler metrics
	Transitions      *prometheus.CounterVec
	FallbackMatches  *prometheus.CounterVec
	LifecyclePublish *prometheus.CounterVec

	// Notification metrics
	NotificationSends *prometheus.CounterVec

	// Summary metrics
	SummaryRequests *prometheus.CounterVec
	SummaryLatency  prometheus.Histogram
}

// NewMetrics creates all metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WebhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Total number of provider webhook events by kind and outcome",
		}, []string{"kind", "outcome"}),

		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transitions_total",
			Help:      "Total number of lifecycle actions by action and decision",
		}, []string{"action", "decision"}),
		FallbackMatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_fallback_total",
			Help:      "Total number of single-candidate fallback lookups by artifact and result",
		}, []string{"artifact", "result"}),
		LifecyclePublish: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_events_published_total",
			Help:      "Total number of lifecycle events published by outcome",
		}, []string{"outcome"}),

		NotificationSends: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_sends_total",
			Help:      "Total number of guest notification emails by outcome",
		}, []string{"outcome"}),

		SummaryRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_requests_total",
			Help:      "Total number of summary requests by outcome",
		}, []string{"outcome"}),
		SummaryLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_generation_seconds",
			Help:      "Time spent fetching and summarizing a transcript",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
	}
}

// RecordWebhookEvent records one processed webhook event.
func (m *Metrics) RecordWebhookEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(kind, outcome).Inc()
}

// RecordTransition records a lifecycle action evaluation.
func (m *Metrics) RecordTransition(action, decision string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action, decision).Inc()
}

// RecordFallback records a fallback lookup result.
func (m *Metrics) RecordFallback(artifact, result string) {
	if m == nil {
		return
	}
	m.FallbackMatches.WithLabelValues(artifact, result).Inc()
}

// RecordLifecyclePublish records a lifecycle event publish attempt.
func (m *Metrics) RecordLifecyclePublish(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.LifecyclePublish.WithLabelValues("error").Inc()
		return
	}
	m.LifecyclePublish.WithLabelValues("ok").Inc()
}

// RecordNotificationSends records the result of one notification fan-out.
func (m *Metrics) RecordNotificationSends(succeeded, failed int) {
	if m == nil {
		return
	}
	m.NotificationSends.WithLabelValues("sent").Add(float64(succeeded))
	m.NotificationSends.WithLabelValues("failed").Add(float64(failed))
}

// RecordSummaryRequest records a summary request outcome.
func (m *Metrics) RecordSummaryRequest(outcome string) {
	if m == nil {
		return
	}
	m.SummaryRequests.WithLabelValues(outcome).Inc()
}

// ObserveSummaryGeneration records how long a summary pipeline run took.
func (m *Metrics) ObserveSummaryGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.SummaryLatency.Observe(d.Seconds())
}
