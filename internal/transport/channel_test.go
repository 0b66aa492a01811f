// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/inboxsync/internal/models"
)

// mockPushServer creates a test WebSocket server that simulates the notification service
type mockPushServer struct {
	server   *httptest.Server
	upgrader websocket.Upgrader
	connChan chan *websocket.Conn
	authSeen atomic.Value
}

func newMockPushServer() *mockPushServer {
	mock := &mockPushServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		connChan: make(chan *websocket.Conn, 4),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		mock.authSeen.Store(auth)
		if auth != "Bearer test-token" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := mock.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mock.connChan <- conn
	}))

	return mock
}

func (m *mockPushServer) close() {
	m.server.Close()
}

func (m *mockPushServer) url() string {
	return "ws" + strings.TrimPrefix(m.server.URL, "http") + "/ws/notifications"
}

func (m *mockPushServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-m.connChan:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive connection")
		return nil
	}
}

func sendFrame(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	env := map[string]interface{}{"event": event}
	if data != nil {
		env["data"] = data
	}
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

// deadURL returns a ws:// URL nothing listens on.
func deadURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()
	return u
}

type staticCreds struct {
	token string
	err   error
}

func (s staticCreds) BearerToken() (string, error) {
	return s.token, s.err
}

type recordingHandler struct {
	events chan models.Event
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{events: make(chan models.Event, 64)}
}

func (h *recordingHandler) HandleEvent(ev models.Event) {
	h.events <- ev
}

func (h *recordingHandler) next(t *testing.T) models.Event {
	t.Helper()
	select {
	case ev := <-h.events:
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return models.Event{}
	}
}

func (h *recordingHandler) expectKind(t *testing.T, kind models.EventKind) models.Event {
	t.Helper()
	ev := h.next(t)
	if ev.Kind != kind {
		t.Fatalf("event kind = %q, want %q", ev.Kind, kind)
	}
	return ev
}

func (h *recordingHandler) expectNone(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-h.events:
		t.Fatalf("unexpected event %q", ev.Kind)
	case <-time.After(wait):
	}
}

func testConfig(endpoints ...string) Config {
	cfg := DefaultConfig(endpoints[0])
	cfg.Endpoints = endpoints
	cfg.ReconnectDelay = 10 * time.Millisecond
	cfg.MaxReconnectAttempts = 3
	cfg.HandshakeTimeout = time.Second
	return cfg
}

// ============================================================================
// Connection Tests
// ============================================================================

func TestChannel_OpenConnects(t *testing.T) {
	mock := newMockPushServer()
	defer mock.close()

	h := newRecordingHandler()
	ch := NewChannel(testConfig(mock.url()), staticCreds{token: "test-token"}, h)
	defer ch.Close()

	if err := ch.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	conn := mock.accept(t)
	defer conn.Close()

	h.expectKind(t, models.EventConnected)
	checkTrue(t, "IsConnected", ch.IsConnected())
	checkStringEqual(t, "authorization", mock.authSeen.Load().(string), "Bearer test-token")
}

func TestChannel_OpenIsIdempotent(t *testing.T) {
	mock := newMockPushServer()
	defer mock.close()

	h := newRecordingHandler()
	ch := NewChannel(testConfig(mock.url()), staticCreds{token: "test-token"}, h)
	defer ch.Close()

	for i := 0; i < 3; i++ {
		if err := ch.Open(context.Background()); err != nil {
			t.Fatalf("Open() #%d error = %v", i, err)
		}
	}

	conn := mock.accept(t)
	defer conn.Close()
	h.expectKind(t, models.EventConnected)

	select {
	case extra := <-mock.connChan:
		extra.Close()
		t.Fatal("second connection opened")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestChannel_OpenOutlivesContext(t *testing.T) {
	mock := newMockPushServer()
	defer mock.close()

	h := newRecordingHandler()
	ch := NewChannel(testConfig(mock.url()), staticCreds{token: "test-token"}, h)
	defer ch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	if err := ch.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	cancel()

	conn := mock.accept(t)
	defer conn.Close()
	h.expectKind(t, models.EventConnected)
	checkTrue(t, "IsConnected after ctx cancel", ch.IsConnected())
}

func TestChannel_OpenCredentialError(t *testing.T) {
	h := newRecordingHandler()
	ch := NewChannel(testConfig("ws://127.0.0.1:1"), staticCreds{err: errors.New("no session")}, h)

	err := ch.Open(context.Background())
	if err == nil {
		t.Fatal("Open() should fail without credentials")
	}
	checkTrue(t, "error mentions cause", strings.Contains(err.Error(), "no session"))
}

func TestChannel_OpenWithoutEndpoints(t *testing.T) {
	ch := NewChannel(Config{}, staticCreds{token: "test-token"}, newRecordingHandler())
	if err := ch.Open(context.Background()); err == nil {
		t.Fatal("Open() should fail without endpoints")
	}
}

// ============================================================================
// Delivery Tests
// ============================================================================

func TestChannel_DeliversEventsInWireOrder(t *testing.T) {
	mock := newMockPushServer()
	defer mock.close()

	h := newRecordingHandler()
	ch := NewChannel(testConfig(mock.url()), staticCreds{token: "test-token"}, h)
	defer ch.Close()

	if err := ch.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	conn := mock.accept(t)
	defer conn.Close()
	h.expectKind(t, models.EventConnected)

	sendFrame(t, conn, "notification:new", map[string]interface{}{"id": "n1", "type": "reply", "title": "A"})
	sendFrame(t, conn, "notification:unread-count", map[string]interface{}{"count": 4})
	sendFrame(t, conn, "notification:marked-read", map[string]interface{}{"notificationId": "n1"})
	sendFrame(t, conn, "notification:all-marked-read", nil)

	ev := h.expectKind(t, models.EventNotificationReceived)
	checkStringEqual(t, "id", ev.Notification.ID, "n1")
	ev = h.expectKind(t, models.EventUnreadCountPushed)
	checkIntEqual(t, "count", ev.Count, 4)
	ev = h.expectKind(t, models.EventReadAcked)
	checkStringEqual(t, "ack id", ev.NotificationID, "n1")
	h.expectKind(t, models.EventAllReadAcked)
}

func TestChannel_DropsMalformedFrames(t *testing.T) {
	mock := newMockPushServer()
	defer mock.close()

	h := newRecordingHandler()
	ch := NewChannel(testConfig(mock.url()), staticCreds{token: "test-token"}, h)
	defer ch.Close()

	if err := ch.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	conn := mock.accept(t)
	defer conn.Close()
	h.expectKind(t, models.EventConnected)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	sendFrame(t, conn, "notification:teleported", map[string]interface{}{})
	sendFrame(t, conn, "notification:unread-count", map[string]interface{}{"count": -3})
	sendFrame(t, conn, "notification:unread-count", map[string]interface{}{"count": 2})

	ev := h.expectKind(t, models.EventUnreadCountPushed)
	checkIntEqual(t, "count", ev.Count, 2)
	checkTrue(t, "still connected", ch.IsConnected())
}

// ============================================================================
// Reconnection Tests
// ============================================================================

func TestChannel_ReconnectsAfterDrop(t *testing.T) {
	mock := newMockPushServer()
	defer mock.close()

	h := newRecordingHandler()
	ch := NewChannel(testConfig(mock.url()), staticCreds{token: "test-token"}, h)
	defer ch.Close()

	if err := ch.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	first := mock.accept(t)
	h.expectKind(t, models.EventConnected)

	first.Close()

	ev := h.expectKind(t, models.EventDisconnected)
	checkTrue(t, "disconnect reason set", ev.Message != "")

	second := mock.accept(t)
	defer second.Close()
	h.expectKind(t, models.EventConnected)
}

func TestChannel_ConnectionFailedAfterMaxAttempts(t *testing.T) {
	h := newRecordingHandler()
	ch := NewChannel(testConfig(deadURL()), staticCreds{token: "test-token"}, h)
	defer ch.Close()

	if err := ch.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	ev := h.expectKind(t, models.EventConnectionFailed)
	if ev.Err == nil {
		t.Fatal("connection-failed should carry an error")
	}
	checkTrue(t, "error mentions attempts", strings.Contains(ev.Err.Error(), "3 attempts"))
	h.expectNone(t, 100*time.Millisecond)

	// The channel stays down until opened again.
	if err := ch.Open(context.Background()); err != nil {
		t.Fatalf("re-Open() error = %v", err)
	}
	h.expectKind(t, models.EventConnectionFailed)
}

func TestChannel_RejectedHandshakeCountsAsFailure(t *testing.T) {
	mock := newMockPushServer()
	defer mock.close()

	h := newRecordingHandler()
	ch := NewChannel(testConfig(mock.url()), staticCreds{token: "wrong"}, h)
	defer ch.Close()

	if err := ch.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ev := h.expectKind(t, models.EventConnectionFailed)
	checkTrue(t, "status in error", strings.Contains(ev.Err.Error(), "401"))
}

func TestChannel_RotatesEndpoints(t *testing.T) {
	mock := newMockPushServer()
	defer mock.close()

	h := newRecordingHandler()
	ch := NewChannel(testConfig(deadURL(), mock.url()), staticCreds{token: "test-token"}, h)
	defer ch.Close()

	if err := ch.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	conn := mock.accept(t)
	defer conn.Close()
	h.expectKind(t, models.EventConnected)
}

// ============================================================================
// Command Tests
// ============================================================================

func TestChannel_RequestMarkReadNotConnected(t *testing.T) {
	ch := NewChannel(testConfig("ws://127.0.0.1:1"), staticCreds{token: "test-token"}, newRecordingHandler())

	if err := ch.RequestMarkRead("n1"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("RequestMarkRead() error = %v, want ErrNotConnected", err)
	}
	if err := ch.RequestMarkAllRead(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("RequestMarkAllRead() error = %v, want ErrNotConnected", err)
	}
}

func TestChannel_RequestMarkReadSendsCommand(t *testing.T) {
	mock := newMockPushServer()
	defer mock.close()

	h := newRecordingHandler()
	ch := NewChannel(testConfig(mock.url()), staticCreds{token: "test-token"}, h)
	defer ch.Close()

	if err := ch.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	conn := mock.accept(t)
	defer conn.Close()
	h.expectKind(t, models.EventConnected)

	if err := ch.RequestMarkRead("n42"); err != nil {
		t.Fatalf("RequestMarkRead() error = %v", err)
	}
	if err := ch.RequestMarkAllRead(); err != nil {
		t.Fatalf("RequestMarkAllRead() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var env struct {
		Event string `json:"event"`
		Data  struct {
			NotificationID string `json:"notificationId"`
		} `json:"data"`
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("server read: %v", err)
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	checkStringEqual(t, "event", env.Event, CommandMarkRead)
	checkStringEqual(t, "notificationId", env.Data.NotificationID, "n42")

	_, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("server read: %v", err)
	}
	checkStringEqual(t, "mark-all frame", string(data), `{"event":"notification:mark-all-read"}`)
}

// ============================================================================
// Close Tests
// ============================================================================

func TestChannel_CloseStopsWithoutDisconnectEvent(t *testing.T) {
	mock := newMockPushServer()
	defer mock.close()

	h := newRecordingHandler()
	ch := NewChannel(testConfig(mock.url()), staticCreds{token: "test-token"}, h)

	if err := ch.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	conn := mock.accept(t)
	defer conn.Close()
	h.expectKind(t, models.EventConnected)

	if err := ch.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	checkTrue(t, "not connected after Close", !ch.IsConnected())
	h.expectNone(t, 100*time.Millisecond)

	select {
	case extra := <-mock.connChan:
		extra.Close()
		t.Fatal("reconnected after Close")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestChannel_CloseIsIdempotent(t *testing.T) {
	ch := NewChannel(testConfig("ws://127.0.0.1:1"), staticCreds{token: "test-token"}, newRecordingHandler())

	if err := ch.Close(); err != nil {
		t.Errorf("Close() on never-opened channel error = %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
