// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package models

import "time"

// EventKind names an event emitted by the transport channel. Domain kinds use
// the wire event names so logs and metrics read the same as the protocol.
type EventKind string

// Lifecycle events.
const (
	EventConnected        EventKind = "connected"
	EventDisconnected     EventKind = "disconnected"
	EventConnectionFailed EventKind = "connection-failed"
)

// Domain events.
const (
	EventNotificationReceived EventKind = "notification:new"
	EventUnreadCountPushed    EventKind = "notification:unread-count"
	EventSystemAlertReceived  EventKind = "notification:system"
	EventReadAcked            EventKind = "notification:marked-read"
	EventAllReadAcked         EventKind = "notification:all-marked-read"
	EventLatestSnapshot       EventKind = "notification:latest"
	EventServerError          EventKind = "notification:error"
)

// Event is one typed event from the push channel. Which payload field is set
// depends on Kind:
//
//	notification:new, notification:system  Notification
//	notification:latest                    Notifications
//	notification:unread-count              Count
//	notification:marked-read               NotificationID
//	notification:error, disconnected       Message
//	connection-failed                      Err
type Event struct {
	Kind           EventKind
	Notification   *Notification
	Notifications  []Notification
	Count          int
	NotificationID string
	Message        string
	Err            error
	ReceivedAt     time.Time
}
