// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package supervisor provides process supervision for the inboxsync daemon
using suture v4.

# Overview

Long-running services are organized into two layers:

	RootSupervisor ("inboxsync")
	├── SyncSupervisor ("sync-layer")
	│   ├── SessionService
	│   └── UnreadPoller
	└── APISupervisor ("api-layer")
	    ├── FeedHubService
	    └── HTTPServerService

The session service owns the login for the configured credentials and logs
out when the tree shuts down. The push channel keeps its own reconnect loop
inside the session and is not a suture service: its give-up behavior is part
of the sync semantics and is surfaced to the UI instead of being restarted
blindly.

# Restart Behavior

Crashed services are restarted with suture's failure decay and backoff.
Services that cannot succeed by retrying, such as a session whose token has
already expired, return suture.ErrDoNotRestart.

# Logging

Supervisor events go through sutureslog into the zerolog logger via
logging.NewSlogLogger:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    FailureThreshold: cfg.Supervisor.FailureThreshold,
	    FailureDecay:     cfg.Supervisor.FailureDecay,
	    FailureBackoff:   cfg.Supervisor.FailureBackoff,
	    ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	tree.AddSyncService(services.NewSessionService(gate, creds))
	tree.AddSyncService(inbox.NewUnreadPoller(store, cfg.Inbox.DegradedPollInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor tree stopped")
	}
*/
package supervisor
