// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

/*
Package websocket serves the local live feed: inbox changes streamed to UI
clients connected to GET /api/v1/inbox/stream.

This is the server side of the daemon. The client side, the push channel
to the notification service, lives in internal/transport.

Each client first receives the current state, then one state message per
applied push event:

	{"type":"state","data":{"event":"notification:new","inserted":{...},"state":{...}}}

Clients may send {"type":"ping"} and get {"type":"pong"} back. A client that
cannot keep up is disconnected rather than allowed to block the hub.

Usage:

	hub := websocket.NewHub()
	tree.AddAPIService(services.NewWebSocketHubService(hub))
	unsubscribe := store.Subscribe(hub.PublishChange)
*/
package websocket
