// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/inboxsync/internal/models"
)

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status        string                 `json:"status"`
	Phase         models.Phase           `json:"phase"`
	Connection    models.ConnectionState `json:"connection"`
	Authenticated bool                   `json:"authenticated"`
	UnreadCount   int                    `json:"unreadCount"`
	Uptime        float64                `json:"uptime"`
}

// Health reports the daemon's state. It always answers 200: a degraded
// sync is still a running daemon.
//
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.inbox.Snapshot()

	status := "healthy"
	switch snap.Phase {
	case models.PhaseDegraded:
		status = "degraded"
	case models.PhaseInactive:
		status = "idle"
	}

	respondData(w, http.StatusOK, HealthStatus{
		Status:        status,
		Phase:         snap.Phase,
		Connection:    snap.Connection,
		Authenticated: h.session.Status().Authenticated,
		UnreadCount:   snap.UnreadCount,
		Uptime:        time.Since(h.startTime).Seconds(),
	})
}
