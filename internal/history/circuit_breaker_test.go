// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package history

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/inboxsync/internal/models"
)

// fakeAPI returns err from every call and counts calls.
type fakeAPI struct {
	err   error
	page  *models.Page
	count int
	calls int
}

func (f *fakeAPI) FetchPage(_ context.Context, _, _ int) (*models.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeAPI) FetchUnreadCount(_ context.Context) (int, error) {
	f.calls++
	return f.count, f.err
}

func (f *fakeAPI) MarkRead(_ context.Context, _ string) error {
	f.calls++
	return f.err
}

func (f *fakeAPI) MarkAllRead(_ context.Context) error {
	f.calls++
	return f.err
}

func (f *fakeAPI) DeleteNotification(_ context.Context, _ string) error {
	f.calls++
	return f.err
}

func TestCircuitBreakerClient_PassesThrough(t *testing.T) {
	fake := &fakeAPI{
		page:  &models.Page{Notifications: []models.Notification{{ID: "n1", Type: models.NotificationTypeReply}}},
		count: 5,
	}
	cbc := NewCircuitBreakerClient(fake, time.Minute)

	page, err := cbc.FetchPage(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	checkStringEqual(t, "id", page.Notifications[0].ID, "n1")

	count, err := cbc.FetchUnreadCount(context.Background())
	if err != nil {
		t.Fatalf("FetchUnreadCount() error = %v", err)
	}
	checkIntEqual(t, "count", count, 5)

	checkStringEqual(t, "name", cbc.Name(), "history-api")
	checkTrue(t, "closed", cbc.State() == gobreaker.StateClosed)
}

func TestCircuitBreakerClient_OpensOnServerFailures(t *testing.T) {
	fake := &fakeAPI{err: &RequestError{Op: "mark_read", StatusCode: http.StatusBadGateway, Err: errors.New("upstream")}}
	cbc := NewCircuitBreakerClient(fake, time.Minute)

	for i := 0; i < 10; i++ {
		_ = cbc.MarkRead(context.Background(), "n1")
	}
	checkTrue(t, "open after 10 failures", cbc.State() == gobreaker.StateOpen)

	before := fake.calls
	err := cbc.MarkRead(context.Background(), "n1")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("error = %v, want ErrOpenState", err)
	}
	var re *RequestError
	checkTrue(t, "rejection is a RequestError", errors.As(err, &re))
	checkIntEqual(t, "calls while open", fake.calls, before)
}

func TestCircuitBreakerClient_ClientFaultsDoNotTrip(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"auth", &AuthError{Op: "fetch_page", StatusCode: http.StatusUnauthorized}},
		{"not found", &RequestError{Op: "delete", StatusCode: http.StatusNotFound, Err: errors.New("gone")}},
		{"invalid argument", ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAPI{err: tt.err}
			cbc := NewCircuitBreakerClient(fake, time.Minute)

			for i := 0; i < 20; i++ {
				err := cbc.DeleteNotification(context.Background(), "n1")
				if !errors.Is(err, tt.err) {
					t.Fatalf("error = %v, want %v", err, tt.err)
				}
			}
			checkTrue(t, "still closed", cbc.State() == gobreaker.StateClosed)
		})
	}
}

func TestCircuitBreakerClient_NeedsMinimumRequests(t *testing.T) {
	fake := &fakeAPI{err: &RequestError{Op: "fetch_page", Err: errors.New("refused")}}
	cbc := NewCircuitBreakerClient(fake, time.Minute)

	for i := 0; i < 9; i++ {
		_, _ = cbc.FetchPage(context.Background(), 1, 20)
	}
	checkTrue(t, "closed below 10 requests", cbc.State() == gobreaker.StateClosed)
	checkIntEqual(t, "total failures", int(cbc.Counts().TotalFailures), 9)
}

func TestStateHelpers(t *testing.T) {
	checkStringEqual(t, "closed", stateToString(gobreaker.StateClosed), "closed")
	checkStringEqual(t, "half-open", stateToString(gobreaker.StateHalfOpen), "half-open")
	checkStringEqual(t, "open", stateToString(gobreaker.StateOpen), "open")
	checkTrue(t, "open float", stateToFloat(gobreaker.StateOpen) == 2)
}
