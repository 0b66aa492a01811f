// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/inboxsync/internal/logging"
	ws "github.com/tomtom215/inboxsync/internal/websocket"
)

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkFeedOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkFeedOrigin accepts non-browser clients (no Origin), same-origin
// pages and the configured origins.
func (h *Handler) checkFeedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	for _, allowed := range h.feedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("Live feed connection rejected: origin not allowed")
	return false
}

// InboxStream upgrades to a WebSocket that receives the current inbox
// state and then every change.
//
// GET /api/v1/inbox/stream
func (h *Handler) InboxStream(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "Live feed unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Live feed upgrade failed")
		return
	}

	client := ws.NewClient(h.feed, conn)
	client.Enqueue(ws.StateMessage(h.inbox.Snapshot()))
	h.feed.Register <- client
	client.Start()
}
