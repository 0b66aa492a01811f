// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/inboxsync/internal/models"
	"github.com/tomtom215/inboxsync/internal/session"
	"github.com/tomtom215/inboxsync/internal/validation"
)

// SessionGate is the part of session.Gate the service drives.
type SessionGate interface {
	Login(ctx context.Context, creds models.Credentials) error
	Logout(reason string)
}

// SessionService logs in with the configured credentials when the tree
// starts and logs out when it stops. Without credentials it only waits, and
// a session can still be started through the local API.
type SessionService struct {
	gate  SessionGate
	creds models.Credentials
}

// NewSessionService creates the service.
func NewSessionService(gate SessionGate, creds models.Credentials) *SessionService {
	return &SessionService{gate: gate, creds: creds}
}

// Serve implements suture.Service.
func (s *SessionService) Serve(ctx context.Context) error {
	if s.creds.Token != "" {
		if err := s.gate.Login(ctx, s.creds); err != nil {
			// Retrying cannot fix a bad or expired token.
			var verr *validation.Errors
			if errors.Is(err, session.ErrSessionExpired) || errors.As(err, &verr) {
				return fmt.Errorf("session login: %w: %w", err, suture.ErrDoNotRestart)
			}
			return fmt.Errorf("session login: %w", err)
		}
	}

	<-ctx.Done()
	s.gate.Logout(session.ReasonShutdown)
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (s *SessionService) String() string {
	return "session"
}
