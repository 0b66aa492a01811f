// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package history is the REST client for the notification history service.

Endpoints (relative to the configured base URL):

	GET    /notifications?page=N&limit=L    one page, newest first
	GET    /notifications/unread-count      {"count": N}
	PATCH  /notifications/{id}/read
	PATCH  /notifications/read-all
	DELETE /notifications/{id}

Every request carries the session's bearer token and an X-Request-ID.

# Errors

401 and 403 responses return *AuthError. Network failures, other non-2xx
responses and undecodable bodies return *RequestError. Failures are never
turned into empty results.

CircuitBreakerClient wraps any API with sony/gobreaker. Rejections while the
circuit is open surface as *RequestError wrapping gobreaker.ErrOpenState.
*/
package history
