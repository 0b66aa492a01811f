// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package inbox reconciles pushed notifications and REST history into one
consistent inbox: a newest-first window of notifications, unique by id, and
a server-authoritative unread counter.

# Phases

	inactive --Activate--> loading --connected--> live
	live --disconnected/connection-failed--> degraded
	degraded --connected--> live (plus one page-1 and unread-count resync)
	any --Deactivate--> inactive

# Ordering

Channel events are applied in delivery order. REST results are applied
only if they still belong to the current session and no newer result of
the same kind has been applied. Pushes that arrive while a page-1 request
is in flight stay on top when its response is merged.

# Actions

MarkAsRead, MarkAllAsRead and DeleteNotification apply locally first and
roll back when the remote call fails. A rejected session is reported
through the OnAuthError hook after the rollback.
*/
package inbox
