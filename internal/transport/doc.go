// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package transport implements the push channel to the notification service.

A Channel holds one WebSocket connection authenticated with the session's
bearer token. Frames are JSON envelopes:

	{"event": "notification:new", "data": {...}}

Inbound events:

  - notification:new            a new notification
  - notification:system         a system alert
  - notification:unread-count   authoritative unread counter
  - notification:marked-read    server confirmed one read
  - notification:all-marked-read
  - notification:latest         snapshot of the newest notifications
  - notification:error          server-reported error message

Outbound commands are notification:mark-read and notification:mark-all-read.

# Reconnection

After a drop the channel redials at a fixed delay, rotating through the
configured endpoints. After MaxReconnectAttempts consecutive failures it
emits connection-failed and stays down until Open is called again.

# Delivery

Events (including the connected, disconnected and connection-failed
lifecycle events) are delivered synchronously to one Handler from the
reader goroutine, so the handler sees them in wire order. Frames that
cannot be decoded are logged, counted and dropped.
*/
package transport
