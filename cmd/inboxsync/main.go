// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/inboxsync/internal/api"
	"github.com/tomtom215/inboxsync/internal/config"
	"github.com/tomtom215/inboxsync/internal/history"
	"github.com/tomtom215/inboxsync/internal/inbox"
	"github.com/tomtom215/inboxsync/internal/logging"
	"github.com/tomtom215/inboxsync/internal/models"
	"github.com/tomtom215/inboxsync/internal/presenter"
	"github.com/tomtom215/inboxsync/internal/session"
	"github.com/tomtom215/inboxsync/internal/supervisor"
	"github.com/tomtom215/inboxsync/internal/supervisor/services"
	"github.com/tomtom215/inboxsync/internal/transport"
	ws "github.com/tomtom215/inboxsync/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})

	logging.Info().
		Strs("endpoints", cfg.Transport.Endpoints).
		Str("history_url", cfg.History.BaseURL).
		Bool("api_enabled", cfg.Server.Enabled).
		Msg("Starting inboxsync")

	// The REST client and the channel read their token from the gate, which
	// in turn needs the store. gate is assigned before any session starts.
	var gate *session.Gate
	creds := history.CredentialFunc(func() (string, error) {
		return gate.BearerToken()
	})

	var historyAPI history.API = history.NewClient(history.Config{
		BaseURL:           cfg.History.BaseURL,
		Timeout:           cfg.History.Timeout,
		RequestsPerSecond: cfg.History.RequestsPerSecond,
		Burst:             cfg.History.Burst,
	}, creds)
	if cfg.History.CircuitBreaker {
		historyAPI = history.NewCircuitBreakerClient(historyAPI, cfg.History.CircuitBreakerTimeout)
		logging.Info().Dur("timeout", cfg.History.CircuitBreakerTimeout).Msg("History circuit breaker enabled")
	}

	store := inbox.NewStore(inbox.Config{PageSize: cfg.Inbox.PageSize}, historyAPI)
	gate = session.NewGate(session.Config{ExpiryLeeway: cfg.Session.ExpiryLeeway}, store)

	channel := transport.NewChannel(transport.Config{
		Endpoints:            cfg.Transport.Endpoints,
		ReconnectDelay:       cfg.Transport.ReconnectDelay,
		MaxReconnectAttempts: cfg.Transport.MaxReconnectAttempts,
		HandshakeTimeout:     cfg.Transport.HandshakeTimeout,
		PingInterval:         cfg.Transport.PingInterval,
		PongWait:             cfg.Transport.PongWait,
		WriteTimeout:         cfg.Transport.WriteTimeout,
	}, gate, store)
	store.AttachChannel(channel)
	gate.AttachChannel(channel)
	store.OnAuthError(gate.HandleAuthError)

	var sink presenter.EffectSink
	switch cfg.Effects.Sink {
	case "terminal":
		sink = presenter.NewTerminalSink(os.Stdout)
	default:
		sink = presenter.NewLogSink(logging.WithComponent("effects"))
	}
	adapter := presenter.NewAdapter(store, sink, presenter.Config{
		Sound: cfg.Effects.Sound,
		Toast: cfg.Effects.Toast,
	})
	adapter.SetRetrier(gate)
	adapter.Start()
	defer adapter.Stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Sync layer services
	tree.AddSyncService(services.NewSessionService(gate, models.Credentials{
		Subject: cfg.Session.Subject,
		Token:   cfg.Session.Token,
	}))
	tree.AddSyncService(inbox.NewUnreadPoller(store, cfg.Inbox.DegradedPollInterval))
	if cfg.Session.Token == "" {
		logging.Info().Msg("No session token configured, waiting for login through the local API")
	}

	// API layer services
	if cfg.Server.Enabled {
		mw := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
			CORSAllowedOrigins: cfg.Server.CORSOrigins,
			CORSAllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			CORSMaxAge:         86400,
			RateLimitRequests:  cfg.Server.RateLimitReqs,
			RateLimitWindow:    cfg.Server.RateLimitWindow,
			RateLimitDisabled:  cfg.Server.RateLimitReqs == 0,
		})
		hub := ws.NewHub()
		unsubscribe := store.Subscribe(hub.PublishChange)
		defer unsubscribe()

		handler := api.NewHandler(adapter, gate)
		handler.SetFeed(hub, cfg.Server.CORSOrigins)

		server := &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           api.NewRouter(handler, mw),
			ReadHeaderTimeout: 10 * time.Second,
		}
		tree.AddAPIService(services.NewFeedHubService(hub))
		tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	// The session service logs out on shutdown; this covers a tree that
	// stopped before it could.
	gate.Logout(session.ReasonShutdown)
	store.Wait()

	logging.Info().Msg("Inboxsync stopped")
}
