// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/inboxsync/internal/models"
)

// feedServer upgrades every request and hands the connection to a
// registered Client after queueing the initial state.
func feedServer(t *testing.T, hub *Hub, initial models.InboxState) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn)
		client.Enqueue(StateMessage(initial))
		hub.Register <- client
		client.Start()
	}))
	t.Cleanup(server.Close)
	return server
}

func dialFeed(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// wireMessage is Message as a client decodes it.
type wireMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg wireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return msg
}

func TestNewClient(t *testing.T) {
	hub := NewHub()
	a := NewClient(hub, nil)
	b := NewClient(hub, nil)

	if b.ID() <= a.ID() {
		t.Errorf("ids should increase: %d then %d", a.ID(), b.ID())
	}
	if cap(a.send) == 0 {
		t.Error("send should be buffered")
	}
}

func TestClient_Enqueue(t *testing.T) {
	c := &Client{send: make(chan Message, 1)}

	if !c.Enqueue(Message{Type: MessageTypeState}) {
		t.Fatal("first enqueue should succeed")
	}
	if c.Enqueue(Message{Type: MessageTypeState}) {
		t.Error("enqueue on a full buffer should fail")
	}
}

func TestClient_InitialStateThenUpdates(t *testing.T) {
	hub := startHub(t)
	server := feedServer(t, hub, models.InboxState{Phase: models.PhaseLoading})
	conn := dialFeed(t, server)

	msg := readFrame(t, conn)
	if msg.Type != MessageTypeState {
		t.Fatalf("type = %q, want state", msg.Type)
	}
	var first StateUpdate
	if err := json.Unmarshal(msg.Data, &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.State.Phase != models.PhaseLoading || first.Event != "" {
		t.Errorf("initial = %+v", first)
	}

	waitForCount(t, hub, 1)
	hub.BroadcastJSON(MessageTypeState, StateUpdate{
		Event: models.EventUnreadCountPushed,
		State: models.InboxState{Phase: models.PhaseLive, UnreadCount: 4},
	})

	var next StateUpdate
	if err := json.Unmarshal(readFrame(t, conn).Data, &next); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if next.Event != models.EventUnreadCountPushed || next.State.UnreadCount != 4 {
		t.Errorf("update = %+v", next)
	}
}

func TestClient_PingPong(t *testing.T) {
	hub := startHub(t)
	server := feedServer(t, hub, models.InboxState{})
	conn := dialFeed(t, server)
	readFrame(t, conn) // initial state

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readFrame(t, conn); msg.Type != MessageTypePong {
		t.Errorf("type = %q, want pong", msg.Type)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub := startHub(t)
	server := feedServer(t, hub, models.InboxState{})
	conn := dialFeed(t, server)
	readFrame(t, conn)
	waitForCount(t, hub, 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	waitForCount(t, hub, 0)
}
