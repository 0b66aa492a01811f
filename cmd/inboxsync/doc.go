// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

// Package main is the entry point for the inboxsync daemon.
//
// inboxsync keeps a local copy of a user's notification inbox in sync with
// a notification service. New notifications arrive over a WebSocket push
// channel; history, unread counts and fallback mutations go over REST. The
// two sources are reconciled into one inbox that is exposed through a small
// local HTTP API and surfaced as sound and toast effects.
//
// # Startup
//
//  1. Configuration: defaults, config.yaml, then environment (Koanf v2)
//  2. History client: rate limited, optionally behind a circuit breaker
//  3. Inbox store, session gate and push channel
//  4. Presentation adapter with a log or terminal effect sink
//  5. Supervisor tree: session service, unread poller, live feed hub and
//     local HTTP API
//
// # Configuration
//
// The most common settings:
//
//	INBOX_TOKEN=...                   bearer token; empty waits for API login
//	INBOX_PUSH_URL=wss://push.example/ws,wss://push2.example/ws
//	INBOX_API_URL=https://api.example/v1
//	INBOX_EFFECTS_SINK=terminal       ring the bell and print toasts
//	INBOX_HTTP_PORT=7811              local API on 127.0.0.1
//
// # Signal Handling
//
// SIGINT and SIGTERM stop the supervisor tree. The session is logged out,
// which closes the push channel and clears the inbox, before the process
// exits.
package main
