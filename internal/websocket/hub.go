// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/inboxsync/internal/inbox"
	"github.com/tomtom215/inboxsync/internal/logging"
	"github.com/tomtom215/inboxsync/internal/metrics"
	"github.com/tomtom215/inboxsync/internal/models"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types on the live feed.
const (
	MessageTypeState = "state"
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
)

// Message is one frame sent to a feed client.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// StateUpdate is the payload of a state message. Inserted is set when the
// event added a notification the window did not have.
type StateUpdate struct {
	Event    models.EventKind     `json:"event,omitempty"`
	Inserted *models.Notification `json:"inserted,omitempty"`
	State    models.InboxState    `json:"state"`
}

// StateMessage builds the state message for a snapshot with no triggering
// event, as sent to a client right after it connects.
func StateMessage(state models.InboxState) Message {
	return Message{Type: MessageTypeState, Data: StateUpdate{State: state}}
}

// Hub fans inbox changes out to local feed clients.
//
// Register, Unregister and broadcast are handled by one goroutine
// (RunWithContext). Lifecycle events take priority over broadcasts so a
// client is never sent a frame after it unregistered.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewHub creates a hub. It does nothing until RunWithContext is called.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logging.WithComponent("feed-hub"),
	}
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// client and returns ctx.Err().
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()

	metrics.FeedClients.Set(float64(n))
	h.logger.Debug().Uint64("client_id", client.id).Int("total_clients", n).Msg("Feed client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.FeedClients.Set(float64(n))
	h.logger.Debug().Uint64("client_id", client.id).Int("total_clients", n).Msg("Feed client disconnected")
}

func (h *Hub) shutdown(ctx context.Context) {
	n := h.GetClientCount()
	h.closeAllClients()

	h.logger.Info().
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", n).
		Msg("Feed hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// broadcastToClients sends message to every client in id order. A client
// whose buffer is full is dropped; it reconnects and gets a fresh state.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.sortedClientsLocked()

	var dropped []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			dropped = append(dropped, client)
		}
	}

	for _, client := range dropped {
		close(client.send)
		delete(h.clients, client)
		h.logger.Warn().Uint64("client_id", client.id).Msg("Feed client too slow, dropped")
	}
	if len(dropped) > 0 {
		metrics.FeedClients.Set(float64(len(h.clients)))
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClientsLocked() {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.FeedClients.Set(0)
}

func (h *Hub) sortedClientsLocked() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// BroadcastJSON queues a message for every client. It never blocks; when
// the queue is full the message is dropped.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
	default:
		metrics.FeedDropped.Inc()
		h.logger.Warn().Str("message_type", messageType).Msg("Feed broadcast queue full, dropping message")
	}
}

// PublishChange broadcasts an inbox change. It has the signature of an
// inbox.Store subscriber.
func (h *Hub) PublishChange(c inbox.Change) {
	update := StateUpdate{Event: c.Event.Kind, State: c.State}
	if c.Inserted && c.Event.Notification != nil {
		n := *c.Event.Notification
		update.Inserted = &n
	}
	h.BroadcastJSON(MessageTypeState, update)
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
