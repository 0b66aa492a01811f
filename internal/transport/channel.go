// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/inboxsync/internal/logging"
	"github.com/tomtom215/inboxsync/internal/metrics"
	"github.com/tomtom215/inboxsync/internal/models"
)

// ErrNotConnected is returned by outbound commands when no socket is open.
// Callers fall back to REST.
var ErrNotConnected = errors.New("push channel not connected")

// CredentialSource supplies the bearer token of the current session.
type CredentialSource interface {
	BearerToken() (string, error)
}

// Handler receives channel events. HandleEvent is called synchronously,
// in wire order, from a single goroutine. It must not call Close.
type Handler interface {
	HandleEvent(ev models.Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev models.Event)

// HandleEvent calls f(ev).
func (f HandlerFunc) HandleEvent(ev models.Event) {
	f(ev)
}

// Config controls dialing and reconnection.
type Config struct {
	// Endpoints are tried round-robin, one per attempt.
	Endpoints []string

	// ReconnectDelay is the fixed wait between attempts.
	ReconnectDelay time.Duration

	// MaxReconnectAttempts bounds consecutive failed dials before
	// connection-failed is emitted and the channel stops.
	MaxReconnectAttempts int

	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongWait         time.Duration
	WriteTimeout     time.Duration
}

// DefaultConfig returns the standard reconnect policy for endpoint.
func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoints:            []string{endpoint},
		ReconnectDelay:       time.Second,
		MaxReconnectAttempts: 10,
		HandshakeTimeout:     10 * time.Second,
		PingInterval:         25 * time.Second,
		PongWait:             60 * time.Second,
		WriteTimeout:         10 * time.Second,
	}
}

// Channel is the push connection to the notification service. It dials,
// keeps the socket alive, reconnects after drops and forwards decoded
// events to its Handler.
type Channel struct {
	cfg     Config
	creds   CredentialSource
	handler Handler
	dialer  websocket.Dialer
	logger  zerolog.Logger

	// WebSocket connection
	conn    *websocket.Conn
	connMu  sync.RWMutex
	writeMu sync.Mutex

	// Lifecycle management
	runMu   sync.Mutex
	running bool
	gen     uint64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewChannel creates a closed channel.
func NewChannel(cfg Config, creds CredentialSource, handler Handler) *Channel {
	return &Channel{
		cfg:     cfg,
		creds:   creds,
		handler: handler,
		dialer: websocket.Dialer{
			HandshakeTimeout:  cfg.HandshakeTimeout,
			EnableCompression: true,
		},
		logger: logging.WithComponent("transport"),
	}
}

// Open starts connecting in the background. It is a no-op while the
// channel is already running. The connection loop outlives ctx's
// cancellation; only Close stops it.
func (c *Channel) Open(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.running {
		return nil
	}
	if len(c.cfg.Endpoints) == 0 {
		return fmt.Errorf("open push channel: no endpoints configured")
	}
	if _, err := c.creds.BearerToken(); err != nil {
		return fmt.Errorf("open push channel: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.gen++
	c.running = true
	c.cancel = cancel

	c.wg.Add(1)
	go c.run(runCtx, c.gen)

	return nil
}

// Close stops reconnection, closes the socket and waits for the
// background goroutines. Safe to call when already closed.
func (c *Channel) Close() error {
	c.runMu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.running = false
	c.runMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.closeConnection()
	c.wg.Wait()

	return nil
}

// IsConnected returns true if the WebSocket is connected
func (c *Channel) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.conn != nil
}

// RequestMarkRead asks the server to mark one notification read.
// Confirmation, if any, arrives later as a read-acked event.
func (c *Channel) RequestMarkRead(id string) error {
	return c.send(CommandMarkRead, markReadCommand{NotificationID: id})
}

// RequestMarkAllRead asks the server to mark everything read.
func (c *Channel) RequestMarkAllRead() error {
	return c.send(CommandMarkAllRead, nil)
}

func (c *Channel) send(command string, payload interface{}) error {
	data, err := EncodeCommand(command, payload)
	if err != nil {
		return err
	}

	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		metrics.TransportCommands.WithLabelValues(command, "not_connected").Inc()
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to set write deadline")
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		metrics.TransportCommands.WithLabelValues(command, "error").Inc()
		return fmt.Errorf("send %s: %w", command, err)
	}

	metrics.TransportCommands.WithLabelValues(command, "sent").Inc()
	return nil
}

// run dials, reads until the socket drops and reconnects at a fixed delay.
func (c *Channel) run(ctx context.Context, gen uint64) {
	defer c.wg.Done()

	failures := 0
	attempt := 0

	for {
		if ctx.Err() != nil {
			return
		}

		endpoint := c.cfg.Endpoints[attempt%len(c.cfg.Endpoints)]
		attempt++

		conn, err := c.dial(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			metrics.TransportReconnectAttempts.Inc()
			c.logger.Warn().Err(err).
				Str("endpoint", endpoint).
				Int("attempt", failures).
				Int("max_attempts", c.cfg.MaxReconnectAttempts).
				Msg("Push connection attempt failed")

			if failures >= c.cfg.MaxReconnectAttempts {
				c.stopped(gen)
				c.logger.Error().Int("attempts", failures).Msg("Giving up on push connection")
				c.emit(models.Event{
					Kind: models.EventConnectionFailed,
					Err:  fmt.Errorf("push connection failed after %d attempts: %w", failures, err),
				})
				return
			}

			if !sleepCtx(ctx, c.cfg.ReconnectDelay) {
				return
			}
			continue
		}

		failures = 0
		c.connMu.Lock()
		c.conn = conn
		c.connMu.Unlock()
		metrics.TransportConnected.Set(1)

		c.logger.Info().Str("endpoint", endpoint).Msg("Push channel connected")
		c.emit(models.Event{Kind: models.EventConnected})

		reason := c.readLoop(ctx, conn)
		c.closeConnection()

		if ctx.Err() != nil {
			return
		}

		c.logger.Warn().Str("reason", reason).Msg("Push channel disconnected, reconnecting")
		c.emit(models.Event{Kind: models.EventDisconnected, Message: reason})

		if !sleepCtx(ctx, c.cfg.ReconnectDelay) {
			return
		}
	}
}

func (c *Channel) dial(ctx context.Context, endpoint string) (*websocket.Conn, error) {
	token, err := c.creds.BearerToken()
	if err != nil {
		return nil, fmt.Errorf("credentials: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug().Err(cerr).Msg("Failed to close handshake response body")
		}
	}
	return conn, nil
}

// readLoop forwards frames until the socket fails and returns the reason.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) string {
	extend := func() {
		if err := conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
			c.logger.Debug().Err(err).Msg("Failed to set read deadline")
		}
	}
	extend()
	conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	done := make(chan struct{})
	defer close(done)

	c.wg.Add(1)
	go c.pingLoop(ctx, conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return "closed by server"
			}
			return err.Error()
		}
		extend()

		ev, err := Decode(data, time.Now())
		if err != nil {
			reason := ReasonMalformedJSON
			var perr *ProtocolError
			if errors.As(err, &perr) {
				reason = perr.Reason
			}
			metrics.TransportProtocolErrors.WithLabelValues(reason).Inc()
			c.logger.Warn().Err(err).Int("bytes", len(data)).Msg("Dropping malformed push frame")
			continue
		}

		metrics.TransportEvents.WithLabelValues(string(ev.Kind)).Inc()
		c.emit(ev)
	}
}

// pingLoop sends periodic ping control frames on conn until done.
func (c *Channel) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Close raced with a fresh dial; unblock the reader.
			_ = conn.Close()
			return
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug().Err(err).Msg("Keep-alive failed")
				// Unblocks the reader, which reports the drop.
				_ = conn.Close()
				return
			}
		}
	}
}

func (c *Channel) emit(ev models.Event) {
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}
	if c.handler != nil {
		c.handler.HandleEvent(ev)
	}
}

// stopped marks the loop of generation gen as finished so Open can start
// a new one.
func (c *Channel) stopped(gen uint64) {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.gen == gen {
		if c.cancel != nil {
			c.cancel()
		}
		c.running = false
		c.cancel = nil
	}
}

// closeConnection safely closes the WebSocket connection
func (c *Channel) closeConnection() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}

	if err := c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send close message")
	}
	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to close connection")
	}
	c.conn = nil
	metrics.TransportConnected.Set(0)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
