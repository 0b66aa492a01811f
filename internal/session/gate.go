// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/inboxsync/internal/history"
	"github.com/tomtom215/inboxsync/internal/logging"
	"github.com/tomtom215/inboxsync/internal/models"
	"github.com/tomtom215/inboxsync/internal/validation"
)

var (
	// ErrNotAuthenticated is returned when no session is active.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired is returned by Login for a token that is already
	// past its exp claim.
	ErrSessionExpired = errors.New("session token has expired")
)

// Logout reasons.
const (
	ReasonUserLogout    = "user logout"
	ReasonAccountSwitch = "account switch"
	ReasonAuthRejected  = "credentials rejected"
	ReasonExpired       = "session expired"
	ReasonShutdown      = "shutdown"
)

// Store is the part of inbox.Store the gate drives.
type Store interface {
	Activate()
	Deactivate()
	Refresh(ctx context.Context) error
}

// Channel is the part of transport.Channel the gate drives.
type Channel interface {
	Open(ctx context.Context) error
	Close() error
}

// Config holds gate settings.
type Config struct {
	// ExpiryLeeway ends the session this long before the token's exp.
	ExpiryLeeway time.Duration
}

// Gate owns the session lifecycle. Logging in activates the store and opens
// the push channel; logging out closes the channel and clears the store.
// It is also the credential source for the transport and history clients.
type Gate struct {
	cfg    Config
	store  Store
	logger zerolog.Logger
	now    func() time.Time

	// lifeMu serializes Login, Logout and Retry. It is never held by
	// BearerToken, which the channel calls from its own goroutines.
	lifeMu  sync.Mutex
	channel Channel
	timer   *time.Timer

	mu            sync.RWMutex
	authenticated bool
	creds         models.Credentials
	expiresAt     time.Time
	gen           uint64
}

// NewGate creates a gate with no active session.
func NewGate(cfg Config, store Store) *Gate {
	return &Gate{
		cfg:    cfg,
		store:  store,
		logger: logging.WithComponent("session"),
		now:    time.Now,
	}
}

// AttachChannel sets the push channel. The channel is created after the
// gate because it reads its token from the gate.
func (g *Gate) AttachChannel(ch Channel) {
	g.lifeMu.Lock()
	defer g.lifeMu.Unlock()
	g.channel = ch
}

// Login starts a session for creds. Logging in again as the same subject
// only replaces the token. A different subject ends the current session
// first.
func (g *Gate) Login(ctx context.Context, creds models.Credentials) error {
	if err := validation.ValidateStruct(&creds); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var expiresAt time.Time
	if claims, ok := inspectToken(creds.Token); ok {
		if creds.Subject == "" {
			creds.Subject = claims.subject
		}
		expiresAt = claims.expiresAt
	}
	if !expiresAt.IsZero() && !g.now().Before(expiresAt.Add(-g.cfg.ExpiryLeeway)) {
		return fmt.Errorf("login: %w", ErrSessionExpired)
	}

	g.lifeMu.Lock()
	defer g.lifeMu.Unlock()

	g.mu.Lock()
	if g.authenticated && g.creds.Subject == creds.Subject {
		g.creds.Token = creds.Token
		g.expiresAt = expiresAt
		gen := g.gen
		g.mu.Unlock()

		g.scheduleExpiry(gen, expiresAt)
		g.logger.Debug().Str("subject", creds.Subject).Msg("Token refreshed for active session")
		return nil
	}
	switching := g.authenticated
	g.mu.Unlock()

	if switching {
		g.teardown(ReasonAccountSwitch)
	}

	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.authenticated = true
	g.creds = creds
	g.expiresAt = expiresAt
	g.mu.Unlock()

	g.store.Activate()
	if g.channel != nil {
		if err := g.channel.Open(ctx); err != nil {
			g.teardown("push channel unavailable")
			return fmt.Errorf("login: %w", err)
		}
	}
	g.scheduleExpiry(gen, expiresAt)

	ev := g.logger.Info().Str("subject", creds.Subject)
	if !expiresAt.IsZero() {
		ev = ev.Time("expires_at", expiresAt)
	}
	ev.Msg("Session started")
	return nil
}

// Logout ends the session. It returns once the channel is closed and the
// store is cleared. Calling it without a session does nothing.
func (g *Gate) Logout(reason string) {
	g.lifeMu.Lock()
	defer g.lifeMu.Unlock()

	if !g.Authenticated() {
		return
	}
	g.teardown(reason)
}

// teardown must be called with lifeMu held.
func (g *Gate) teardown(reason string) {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}

	if g.channel != nil {
		if err := g.channel.Close(); err != nil {
			g.logger.Warn().Err(err).Msg("Closing push channel failed")
		}
	}
	g.store.Deactivate()

	g.mu.Lock()
	subject := g.creds.Subject
	g.authenticated = false
	g.creds = models.Credentials{}
	g.expiresAt = time.Time{}
	g.gen++
	g.mu.Unlock()

	g.logger.Info().Str("subject", subject).Str("reason", reason).Msg("Session ended")
}

// scheduleExpiry must be called with lifeMu held.
func (g *Gate) scheduleExpiry(gen uint64, expiresAt time.Time) {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	if expiresAt.IsZero() {
		return
	}

	d := expiresAt.Add(-g.cfg.ExpiryLeeway).Sub(g.now())
	g.timer = time.AfterFunc(d, func() { g.expire(gen) })
}

func (g *Gate) expire(gen uint64) {
	g.lifeMu.Lock()
	defer g.lifeMu.Unlock()

	g.mu.RLock()
	current := g.authenticated && g.gen == gen
	g.mu.RUnlock()

	if current {
		g.timer = nil
		g.teardown(ReasonExpired)
	}
}

// HandleAuthError ends the session when err says the server rejected the
// credentials. Other errors are ignored.
func (g *Gate) HandleAuthError(err error) {
	if !history.IsAuthError(err) {
		return
	}
	g.logger.Warn().Err(err).Msg("Server rejected credentials")
	g.Logout(ReasonAuthRejected)
}

// Retry reopens the push channel after it gave up and refetches page 1
// and the unread count.
func (g *Gate) Retry(ctx context.Context) error {
	g.lifeMu.Lock()
	if !g.Authenticated() {
		g.lifeMu.Unlock()
		return ErrNotAuthenticated
	}
	if g.channel != nil {
		if err := g.channel.Close(); err != nil {
			g.logger.Warn().Err(err).Msg("Closing push channel failed")
		}
		if err := g.channel.Open(ctx); err != nil {
			g.lifeMu.Unlock()
			return fmt.Errorf("retry: %w", err)
		}
	}
	g.lifeMu.Unlock()

	if err := g.store.Refresh(ctx); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	return nil
}

// BearerToken returns the token of the active session.
func (g *Gate) BearerToken() (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.authenticated {
		return "", ErrNotAuthenticated
	}
	return g.creds.Token, nil
}

// Authenticated reports whether a session is active.
func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated
}

// Status returns the current session for status endpoints.
func (g *Gate) Status() models.SessionStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()

	st := models.SessionStatus{Authenticated: g.authenticated, Subject: g.creds.Subject}
	if !g.expiresAt.IsZero() {
		exp := g.expiresAt
		st.ExpiresAt = &exp
	}
	return st
}
