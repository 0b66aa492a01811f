// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package services

import (
	"context"
)

// ContextHub is the run loop of *websocket.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// FeedHubService runs the local live feed hub under the supervisor. The
// hub closes its clients when ctx is canceled, so a restart starts clean.
//
//	hub := websocket.NewHub()
//	tree.AddAPIService(services.NewFeedHubService(hub))
type FeedHubService struct {
	hub  ContextHub
	name string
}

// NewFeedHubService creates the wrapper.
func NewFeedHubService(hub ContextHub) *FeedHubService {
	return &FeedHubService{
		hub:  hub,
		name: "feed-hub",
	}
}

// Serve implements suture.Service.
func (w *FeedHubService) Serve(ctx context.Context) error {
	return w.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture logging.
func (w *FeedHubService) String() string {
	return w.name
}
