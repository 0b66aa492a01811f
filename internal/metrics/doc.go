// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package metrics exposes Prometheus instrumentation for inboxsync.

Metrics are registered with promauto on the default registry and served by
the local API at /metrics.

Transport:
  - inbox_transport_connected: 1 while the push socket is up (gauge)
  - inbox_transport_reconnect_attempts_total: dial attempts after the first (counter)
  - inbox_transport_events_total: decoded push events (counter, label: event)
  - inbox_transport_protocol_errors_total: dropped malformed frames (counter, label: reason)
  - inbox_transport_commands_total: outbound commands (counter, labels: command, result)

REST history:
  - inbox_rest_requests_total: requests (counter, labels: op, outcome)
  - inbox_rest_request_duration_seconds: latency (histogram, label: op)
  - inbox_circuit_breaker_state: 0=closed 1=half-open 2=open (gauge, label: name)
  - inbox_circuit_breaker_transitions_total (counter, labels: name, from, to)

Store:
  - inbox_unread_count: current unread counter (gauge)
  - inbox_items: entries in the window (gauge)
  - inbox_phase: 0=inactive 1=loading 2=live 3=degraded (gauge)
  - inbox_events_applied_total (counter, label: event)
  - inbox_stale_responses_total: discarded out-of-date REST results (counter, label: kind)
  - inbox_rollbacks_total: compensated optimistic actions (counter, label: action)
  - inbox_resyncs_total: page-1 + unread refetches after reconnect (counter)

Presentation:
  - inbox_effects_total: sounds and toasts emitted (counter, label: effect)
*/
package metrics
