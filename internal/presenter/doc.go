// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package presenter is the boundary between the sync engine and whatever shows
the inbox to a user.

An Adapter exposes the current snapshot and the user actions, and turns
store changes into side effects. Effects are driven by a policy table keyed
by event kind: only a newly inserted notification or system alert produces a
sound or a toast, and each is gated by configuration. Duplicate deliveries,
counter updates and acknowledgements never produce effects.

Two sinks are provided:

  - LogSink writes each effect as a structured log line
  - TerminalSink rings the terminal bell and prints a one-line toast

Usage:

	adapter := presenter.NewAdapter(store, presenter.NewLogSink(logging.WithComponent("effects")),
	    presenter.Config{Sound: true, Toast: true})
	adapter.SetRetrier(gate)
	adapter.Start()
	defer adapter.Stop()
*/
package presenter
