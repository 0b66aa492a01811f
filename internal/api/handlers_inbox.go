// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/inboxsync/internal/validation"
)

// notificationIDParam holds the {id} URL parameter for validation.
type notificationIDParam struct {
	ID string `validate:"required,max=256"`
}

func (h *Handler) notificationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := notificationIDParam{ID: chi.URLParam(r, "id")}
	if err := validation.ValidateStruct(&p); err != nil {
		respondActionError(w, r, err)
		return "", false
	}
	return p.ID, true
}

// InboxSnapshot returns the current inbox state.
//
// GET /api/v1/inbox
func (h *Handler) InboxSnapshot(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.inbox.Snapshot())
}

// InboxLoadMore appends the next page of history and returns the new state.
//
// POST /api/v1/inbox/load-more
func (h *Handler) InboxLoadMore(w http.ResponseWriter, r *http.Request) {
	if err := h.inbox.LoadMore(r.Context()); err != nil {
		respondActionError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.inbox.Snapshot())
}

// InboxMarkRead marks one notification read.
//
// POST /api/v1/inbox/{id}/read
func (h *Handler) InboxMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.notificationID(w, r)
	if !ok {
		return
	}
	if err := h.inbox.MarkAsRead(r.Context(), id); err != nil {
		respondActionError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.inbox.Snapshot())
}

// InboxMarkAllRead marks every notification read.
//
// POST /api/v1/inbox/read-all
func (h *Handler) InboxMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.inbox.MarkAllAsRead(r.Context()); err != nil {
		respondActionError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.inbox.Snapshot())
}

// InboxDelete deletes one notification.
//
// DELETE /api/v1/inbox/{id}
func (h *Handler) InboxDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.notificationID(w, r)
	if !ok {
		return
	}
	if err := h.inbox.DeleteNotification(r.Context(), id); err != nil {
		respondActionError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.inbox.Snapshot())
}
