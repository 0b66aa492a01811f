// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/inboxsync/internal/models"
	"github.com/tomtom215/inboxsync/internal/session"
	"github.com/tomtom215/inboxsync/internal/validation"
)

// SessionStatus reports whether a session is active.
//
// GET /api/v1/session
func (h *Handler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.session.Status())
}

// SessionLogin starts a session, or switches to another account.
//
// POST /api/v1/session
func (h *Handler) SessionLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSONBody(w, r, &creds); err != nil {
		var verr *validation.Errors
		if errors.As(err, &verr) {
			respondActionError(w, r, err)
			return
		}
		respondError(w, http.StatusBadRequest, CodeValidation, "Request body must be a JSON credentials object", nil)
		return
	}

	if err := h.session.Login(r.Context(), creds); err != nil {
		respondActionError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.session.Status())
}

// SessionLogout ends the session and clears the inbox.
//
// DELETE /api/v1/session
func (h *Handler) SessionLogout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(session.ReasonUserLogout)
	respondData(w, http.StatusOK, h.session.Status())
}

// SessionRetry reconnects the push channel after it gave up.
//
// POST /api/v1/session/retry
func (h *Handler) SessionRetry(w http.ResponseWriter, r *http.Request) {
	if err := h.inbox.Retry(r.Context()); err != nil {
		respondActionError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.inbox.Snapshot())
}
