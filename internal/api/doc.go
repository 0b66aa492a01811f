// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package api provides the local HTTP API for inboxsync.

The API is the daemon's presentation surface for a UI or script running on
the same machine. It reads the reconciled inbox and forwards user actions to
the presentation adapter and the session gate. It never talks to the
notification service directly.

Routes:

	GET    /healthz                     daemon state and uptime
	GET    /metrics                     Prometheus metrics
	GET    /api/v1/inbox                current inbox snapshot
	GET    /api/v1/inbox/stream         live feed (WebSocket)
	POST   /api/v1/inbox/load-more      append the next history page
	POST   /api/v1/inbox/read-all       mark everything read
	POST   /api/v1/inbox/{id}/read      mark one notification read
	DELETE /api/v1/inbox/{id}           delete one notification
	GET    /api/v1/session              session status
	POST   /api/v1/session              log in or switch account
	DELETE /api/v1/session              log out
	POST   /api/v1/session/retry        reconnect the push channel

Every response uses the models.APIResponse envelope. Successful inbox
actions return the snapshot after the optimistic change was applied and
acknowledged; failed ones return an APIError after the change was rolled
back.

Middleware (go-chi):

  - RequestIDWithLogging: X-Request-ID plus correlation id for logging.Ctx
  - Recoverer: panic recovery
  - CORS: go-chi/cors, origins must be configured explicitly
  - PrometheusMetrics: request count and latency by route pattern
  - RateLimit: per-IP go-chi/httprate limiter on /api/v1
*/
package api
