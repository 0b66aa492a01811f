// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the local API.
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered
	r.Use(PrometheusMetrics())

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())

		r.Route("/inbox", func(r chi.Router) {
			r.Get("/", h.InboxSnapshot)
			r.Get("/stream", h.InboxStream)
			r.Post("/load-more", h.InboxLoadMore)
			r.Post("/read-all", h.InboxMarkAllRead)
			r.Post("/{id}/read", h.InboxMarkRead)
			r.Delete("/{id}", h.InboxDelete)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.SessionStatus)
			r.Post("/", h.SessionLogin)
			r.Delete("/", h.SessionLogout)
			r.Post("/retry", h.SessionRetry)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}
