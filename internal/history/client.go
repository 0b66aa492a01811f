// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package history

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/inboxsync/internal/logging"
	"github.com/tomtom215/inboxsync/internal/metrics"
	"github.com/tomtom215/inboxsync/internal/models"
	"github.com/tomtom215/inboxsync/internal/validation"
)

// API defines the REST history operations.
// Both Client and CircuitBreakerClient implement this interface.
type API interface {
	FetchPage(ctx context.Context, page, limit int) (*models.Page, error)
	FetchUnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}

// Ensure Client implements API
var _ API = (*Client)(nil)

// CredentialSource supplies the bearer token of the current session.
type CredentialSource interface {
	BearerToken() (string, error)
}

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func() (string, error)

// BearerToken calls f.
func (f CredentialFunc) BearerToken() (string, error) {
	return f()
}

// Config holds REST client settings.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client provides access to the notification history REST API
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 4 << 10

// NewClient creates a new history client
func NewClient(cfg Config, creds CredentialSource) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logging.WithComponent("history"),
	}
}

// FetchPage retrieves one page of notifications, newest first.
func (c *Client) FetchPage(ctx context.Context, page, limit int) (*models.Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidArgument, page)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be > 0, got %d", ErrInvalidArgument, limit)
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var result models.Page
	if err := c.do(ctx, "fetch_page", http.MethodGet, "/notifications?"+query.Encode(), &result); err != nil {
		return nil, err
	}
	if result.Notifications == nil {
		result.Notifications = []models.Notification{}
	}
	return &result, nil
}

// FetchUnreadCount retrieves the authoritative unread counter.
func (c *Client) FetchUnreadCount(ctx context.Context) (int, error) {
	var result struct {
		Count *int `json:"count"`
	}
	if err := c.do(ctx, "fetch_unread_count", http.MethodGet, "/notifications/unread-count", &result); err != nil {
		return 0, err
	}
	if result.Count == nil {
		return 0, &RequestError{Op: "fetch_unread_count", StatusCode: http.StatusOK, Err: fmt.Errorf("response has no count")}
	}
	if err := validation.ValidateStruct(models.UnreadCount{Count: *result.Count}); err != nil {
		return 0, &RequestError{Op: "fetch_unread_count", StatusCode: http.StatusOK, Err: err}
	}
	return *result.Count, nil
}

// MarkRead marks one notification read.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty notification id", ErrInvalidArgument)
	}
	return c.do(ctx, "mark_read", http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read", nil)
}

// MarkAllRead marks every notification read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, "mark_all_read", http.MethodPatch, "/notifications/read-all", nil)
}

// DeleteNotification deletes one notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty notification id", ErrInvalidArgument)
	}
	return c.do(ctx, "delete", http.MethodDelete, "/notifications/"+url.PathEscape(id), nil)
}

// do performs one request and decodes a JSON body into out (if non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordREST(op, time.Since(start), err)
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return &RequestError{Op: op, Err: err}
	}

	token, err := c.creds.BearerToken()
	if err != nil {
		return &AuthError{Op: op, StatusCode: http.StatusUnauthorized}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = logging.GenerateRequestID()
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("op", op).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("History request")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Op: op, StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, rerr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if rerr != nil {
			return &RequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("returned status %d (failed to read body)", resp.StatusCode)}
		}
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if page, ok := out.(*models.Page); ok {
		if err := validation.ValidateStruct(page); err != nil {
			return &RequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid response: %w", err)}
		}
	}

	return nil
}
