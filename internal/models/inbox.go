// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package models

import "time"

// Phase is the sync engine's state for the current session.
type Phase string

const (
	PhaseInactive Phase = "inactive"
	PhaseLoading  Phase = "loading"
	PhaseLive     Phase = "live"
	PhaseDegraded Phase = "degraded"
)

// ConnectionState mirrors the transport channel.
type ConnectionState string

const (
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionConnecting   ConnectionState = "connecting"
	ConnectionConnected    ConnectionState = "connected"
)

// Pagination tracks how much REST history has been loaded into the window.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	HasMore     bool `json:"hasMore"`
}

// InboxState is a point-in-time copy of the inbox. Items is newest-first and
// unique by ID, but only a window over the server's history; UnreadCount is
// the server's figure and may count entries not present in Items.
type InboxState struct {
	Phase       Phase           `json:"phase"`
	Connection  ConnectionState `json:"connection"`
	Items       []Notification  `json:"items"`
	UnreadCount int             `json:"unreadCount"`
	Pagination  Pagination      `json:"pagination"`
	Epoch       uint64          `json:"epoch"`
	LastError   string          `json:"lastError,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Find returns the entry with the given id.
func (s *InboxState) Find(id string) (Notification, bool) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return s.Items[i], true
		}
	}
	return Notification{}, false
}

// LocalUnread counts unread entries inside the window. It is informational;
// UnreadCount is the authoritative figure.
func (s *InboxState) LocalUnread() int {
	n := 0
	for i := range s.Items {
		if !s.Items[i].IsRead {
			n++
		}
	}
	return n
}
