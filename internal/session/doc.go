// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package session gates the sync engine on authentication.

A Gate turns login and logout into engine lifecycle calls. Login activates
the inbox store and opens the push channel. Logout closes the channel and
clears the store before it returns, so nothing from the old session survives
into the next one. Logging in as a different subject ends the current
session first; logging in again as the same subject only rotates the token.

The gate is the credential source for both the transport and the history
client. When the token is a JWT its sub and exp claims are read without
verifying the signature, and the session ends ExpiryLeeway before exp.
History calls rejected with 401 or 403 are escalated through
HandleAuthError and also end the session.
*/
package session
