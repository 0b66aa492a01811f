// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims holds what the gate reads from a JWT bearer token.
type tokenClaims struct {
	subject   string
	expiresAt time.Time
}

// inspectToken reads the subject and expiry of a JWT without verifying the
// signature. The server verifies every request; the client only needs to
// know when to stop using the token. Opaque tokens return ok=false.
func inspectToken(token string) (tokenClaims, bool) {
	if strings.Count(token, ".") != 2 {
		return tokenClaims{}, false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return tokenClaims{}, false
	}

	out := tokenClaims{subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.expiresAt = claims.ExpiresAt.Time
	}
	return out, true
}
