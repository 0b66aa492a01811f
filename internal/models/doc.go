// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package models defines the data shared by every inboxsync component.

  - Notification: one inbox entry, identical whether it arrived over the push
    channel or from a REST history page.
  - Event: the typed taxonomy of everything the push channel can report,
    lifecycle (connected, disconnected, connection failed) and domain
    (notification:new, notification:unread-count, ...).
  - InboxState: the read-only snapshot handed to UI surfaces.
  - Page: one REST history page.
  - APIResponse: the envelope used by the local HTTP surface.

Models carry json tags matching the notification service's wire format and
validate tags consumed by internal/validation.
*/
package models
