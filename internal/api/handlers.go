// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/inboxsync/internal/logging"
	"github.com/tomtom215/inboxsync/internal/models"
	ws "github.com/tomtom215/inboxsync/internal/websocket"
)

// Inbox is the presentation surface the handlers drive. It is satisfied
// by *presenter.Adapter.
type Inbox interface {
	Snapshot() models.InboxState
	LoadMore(ctx context.Context) error
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	Retry(ctx context.Context) error
}

// Session is the session surface the handlers drive. It is satisfied by
// *session.Gate.
type Session interface {
	Login(ctx context.Context, creds models.Credentials) error
	Logout(reason string)
	Status() models.SessionStatus
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_inbox.go: inbox snapshot and actions
//   - handlers_session.go: login, logout and retry
//   - handlers_health.go: liveness
//   - handlers_stream.go: live feed upgrade
type Handler struct {
	inbox     Inbox
	session   Session
	startTime time.Time

	feed        *ws.Hub
	feedOrigins []string
}

// NewHandler creates a handler.
func NewHandler(inbox Inbox, session Session) *Handler {
	return &Handler{
		inbox:     inbox,
		session:   session,
		startTime: time.Now(),
	}
}

// SetFeed enables the live feed endpoint. Browser clients must come from
// the API's own origin or one of origins.
func (h *Handler) SetFeed(hub *ws.Hub, origins []string) {
	h.feed = hub
	h.feedOrigins = origins
}

func logRequestError(r *http.Request, err error, code string) {
	logging.Ctx(r.Context()).Error().
		Err(err).
		Str("code", code).
		Str("method", r.Method).
		Str("path", sanitizeLogValue(r.URL.Path)).
		Msg("Request failed")
}
