// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package models

import "time"

// NotificationType is the closed set of notification kinds. It selects the
// icon and priority on UI surfaces; the sync engine treats all kinds alike.
type NotificationType string

const (
	NotificationTypeNewContent  NotificationType = "new-content"
	NotificationTypeReply       NotificationType = "reply"
	NotificationTypeInvite      NotificationType = "invite"
	NotificationTypeSystemAlert NotificationType = "system-alert"
)

// Priority orders kinds for display; higher is more urgent.
func (t NotificationType) Priority() int {
	switch t {
	case NotificationTypeSystemAlert:
		return 3
	case NotificationTypeInvite:
		return 2
	case NotificationTypeReply:
		return 1
	default:
		return 0
	}
}

// Notification is a single inbox entry. ID is stable across the push channel
// and the REST API. IsRead is the only field whose consistency the sync
// engine guarantees.
type Notification struct {
	ID        string           `json:"id" validate:"required,max=256"`
	Type      NotificationType `json:"type" validate:"required,oneof=new-content reply invite system-alert"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	ActionURL string           `json:"actionUrl,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Page is one page of REST notification history, newest first.
type Page struct {
	Notifications []Notification `json:"notifications" validate:"dive"`
	HasNext       bool           `json:"hasNext"`
}

// UnreadCount is the body of the unread-count endpoint and push event.
type UnreadCount struct {
	Count int `json:"count" validate:"gte=0"`
}
