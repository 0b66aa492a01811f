// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package config loads inboxsync configuration.

Configuration is layered with Koanf. Later layers override earlier ones:

 1. Struct defaults (defaultConfig)
 2. YAML file: $INBOXSYNC_CONFIG, ./inboxsync.yaml or /etc/inboxsync/config.yaml
 3. Environment variables

# Environment Variables

Session:
  - INBOX_TOKEN: bearer credential used to open a session at startup
  - INBOX_SUBJECT: account identifier for the token (default: the JWT sub claim)

Transport:
  - INBOX_PUSH_URL: push endpoint(s), comma-separated, dialed round-robin
  - INBOX_RECONNECT_DELAY: delay between reconnect attempts (default: 1s)
  - INBOX_MAX_RECONNECT_ATTEMPTS: attempts before giving up (default: 10)

History:
  - INBOX_API_URL: REST base URL
  - INBOX_API_RPS, INBOX_API_BURST: client-side pacing
  - INBOX_CIRCUIT_BREAKER: wrap the REST client in a circuit breaker (default: true)

Inbox and effects:
  - INBOX_PAGE_SIZE: notifications per page (default: 20)
  - INBOX_DEGRADED_POLL: unread refresh interval while degraded (default: 1m, 0 disables)
  - INBOX_SOUND, INBOX_TOAST: toggle new-notification effects

Local API:
  - INBOX_HTTP_ENABLED, INBOX_HTTP_HOST, INBOX_HTTP_PORT, INBOX_CORS_ORIGINS

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config
