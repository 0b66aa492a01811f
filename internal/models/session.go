// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package models

import "time"

// Credentials identify the signed-in user. Subject may be left empty when
// Token is a JWT carrying a sub claim.
type Credentials struct {
	Subject string `json:"subject,omitempty" validate:"max=256"`
	Token   string `json:"token" validate:"required"`
}

// SessionStatus describes the session gate for status endpoints.
type SessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	Subject       string     `json:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}
