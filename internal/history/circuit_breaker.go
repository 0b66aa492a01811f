// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/inboxsync/internal/logging"
	"github.com/tomtom215/inboxsync/internal/metrics"
	"github.com/tomtom215/inboxsync/internal/models"
)

// Ensure CircuitBreakerClient implements API
var _ API = (*CircuitBreakerClient)(nil)

// CircuitBreakerClient wraps an API with the circuit breaker pattern so a
// failing history service is not hammered by resyncs and retries.
//
// Auth failures and other 4xx responses count as successes: the server is
// healthy, the request was not.
type CircuitBreakerClient struct {
	client API
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient creates a new history client with circuit breaker.
// Circuit breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - timeout before attempting recovery (2 minutes when zero)
//   - Opens after 60% failure rate with minimum 10 requests
func NewCircuitBreakerClient(client API, timeout time.Duration) *CircuitBreakerClient {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	cbName := "history-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening history circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] History state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		IsSuccessful: func(err error) bool {
			return err == nil || isClientFault(err) || errors.Is(err, context.Canceled)
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps a history API call with circuit breaker protection
func (cbc *CircuitBreakerClient) execute(op string, fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Str("op", op).Msg("[CIRCUIT BREAKER] History request rejected")
			return nil, &RequestError{Op: op, Err: err}
		}
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	return result, nil
}

// castResult asserts the breaker's untyped result back to T.
func castResult[T any](op string, result interface{}) (T, error) {
	v, ok := result.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("circuit breaker: unexpected result type for %s", op)
	}
	return v, nil
}

// FetchPage retrieves one page with circuit breaker protection
func (cbc *CircuitBreakerClient) FetchPage(ctx context.Context, page, limit int) (*models.Page, error) {
	result, err := cbc.execute("fetch_page", func() (interface{}, error) {
		return cbc.client.FetchPage(ctx, page, limit)
	})
	if err != nil {
		return nil, err
	}
	return castResult[*models.Page]("fetch_page", result)
}

// FetchUnreadCount retrieves the unread counter with circuit breaker protection
func (cbc *CircuitBreakerClient) FetchUnreadCount(ctx context.Context) (int, error) {
	result, err := cbc.execute("fetch_unread_count", func() (interface{}, error) {
		return cbc.client.FetchUnreadCount(ctx)
	})
	if err != nil {
		return 0, err
	}
	return castResult[int]("fetch_unread_count", result)
}

// MarkRead marks one notification read with circuit breaker protection
func (cbc *CircuitBreakerClient) MarkRead(ctx context.Context, id string) error {
	_, err := cbc.execute("mark_read", func() (interface{}, error) {
		return nil, cbc.client.MarkRead(ctx, id)
	})
	return err
}

// MarkAllRead marks everything read with circuit breaker protection
func (cbc *CircuitBreakerClient) MarkAllRead(ctx context.Context) error {
	_, err := cbc.execute("mark_all_read", func() (interface{}, error) {
		return nil, cbc.client.MarkAllRead(ctx)
	})
	return err
}

// DeleteNotification deletes one notification with circuit breaker protection
func (cbc *CircuitBreakerClient) DeleteNotification(ctx context.Context, id string) error {
	_, err := cbc.execute("delete", func() (interface{}, error) {
		return nil, cbc.client.DeleteNotification(ctx, id)
	})
	return err
}

// State returns the current circuit breaker state
func (cbc *CircuitBreakerClient) State() gobreaker.State {
	return cbc.cb.State()
}

// Counts returns the current circuit breaker counts
func (cbc *CircuitBreakerClient) Counts() gobreaker.Counts {
	return cbc.cb.Counts()
}

// Name returns the circuit breaker name
func (cbc *CircuitBreakerClient) Name() string {
	return cbc.name
}

// stateToFloat converts circuit breaker state to float for Prometheus metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
