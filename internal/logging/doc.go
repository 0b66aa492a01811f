// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

// Package logging is the zerolog facade used by every inboxsync component.
//
// A single global logger is configured once from main and then used through
// level helpers:
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Info().Str("notification_id", id).Msg("Marked read")
//
// Components that log a lot take a child logger tagged with their name:
//
//	log := logging.WithComponent("transport")
//	log.Warn().Err(err).Msg("Dial failed")
//
// Request-scoped code logs through Ctx, which attaches the correlation and
// request ids carried by the context:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Debug().Msg("Fetching page")
//
// NewSlogHandler bridges the logger into log/slog for libraries that only
// accept *slog.Logger (sutureslog).
//
// Always finish an event chain with Msg or Send; an unfinished chain is
// silently discarded.
package logging
