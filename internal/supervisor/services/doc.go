// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package services provides suture.Service wrappers for inboxsync components.

Each wrapper implements suture.Service and fmt.Stringer:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Available services:

  - HTTPServerService runs the local API server and drains it on shutdown
  - FeedHubService runs the live feed hub and closes its clients on shutdown
  - SessionService logs in with the configured credentials and logs out on
    shutdown; an expired or invalid token is not restarted

The degraded-mode inbox.UnreadPoller already implements suture.Service and
is added to the tree directly.
*/
package services
