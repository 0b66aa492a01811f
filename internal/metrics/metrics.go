// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transport

	TransportConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inbox_transport_connected",
		Help: "1 while the push socket is connected",
	})

	TransportReconnectAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inbox_transport_reconnect_attempts_total",
		Help: "Dial attempts made while reconnecting",
	})

	TransportEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_transport_events_total",
		Help: "Push events decoded from the wire",
	}, []string{"event"})

	TransportProtocolErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_transport_protocol_errors_total",
		Help: "Malformed push frames that were dropped",
	}, []string{"reason"})

	TransportCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_transport_commands_total",
		Help: "Outbound push commands",
	}, []string{"command", "result"})

	// REST history

	RESTRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_rest_requests_total",
		Help: "REST history requests by outcome",
	}, []string{"op", "outcome"})

	RESTRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inbox_rest_request_duration_seconds",
		Help:    "REST history request latency",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"op"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "inbox_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	CircuitBreakerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_circuit_breaker_requests_total",
		Help: "Requests through the circuit breaker by result (success, failure, rejected)",
	}, []string{"name", "result"})

	CircuitBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_circuit_breaker_transitions_total",
		Help: "Circuit breaker state transitions",
	}, []string{"name", "from", "to"})

	// Store

	UnreadCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inbox_unread_count",
		Help: "Current unread counter",
	})

	Items = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inbox_items",
		Help: "Notifications held in the window",
	})

	Phase = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inbox_phase",
		Help: "Sync phase (0=inactive, 1=loading, 2=live, 3=degraded)",
	})

	EventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_events_applied_total",
		Help: "Events applied by the reconciliation store",
	}, []string{"event"})

	StaleResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_stale_responses_total",
		Help: "REST results discarded because a newer one was already applied",
	}, []string{"kind"})

	Rollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_rollbacks_total",
		Help: "Optimistic actions compensated after a failed remote call",
	}, []string{"action"})

	Resyncs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inbox_resyncs_total",
		Help: "Page-1 and unread-count refetches after reconnecting",
	})

	// Presentation

	Effects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_effects_total",
		Help: "User-facing side effects emitted",
	}, []string{"effect"})

	// Local API

	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_api_requests_total",
		Help: "Requests served by the local API",
	}, []string{"method", "route", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inbox_api_request_duration_seconds",
		Help:    "Local API request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	FeedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inbox_feed_clients",
		Help: "Local live feed clients connected",
	})

	FeedDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inbox_feed_dropped_total",
		Help: "Live feed messages dropped because the broadcast queue was full",
	})
)

// RecordAPIRequest records one local API request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequests.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordREST records one REST call.
func RecordREST(op string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	RESTRequests.WithLabelValues(op, outcome).Inc()
	RESTRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// BoolGauge converts b to 0 or 1.
func BoolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
