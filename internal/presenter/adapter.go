// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package presenter

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/inboxsync/internal/inbox"
	"github.com/tomtom215/inboxsync/internal/logging"
	"github.com/tomtom215/inboxsync/internal/metrics"
	"github.com/tomtom215/inboxsync/internal/models"
)

// ErrRetryUnavailable is returned by Retry when no retrier is attached.
var ErrRetryUnavailable = errors.New("retry is not available")

// Store is the part of inbox.Store the adapter drives.
type Store interface {
	Snapshot() models.InboxState
	LoadMore(ctx context.Context) error
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	Subscribe(fn func(inbox.Change)) func()
}

// Retrier re-establishes the push connection after it gave up.
type Retrier interface {
	Retry(ctx context.Context) error
}

// Config gates the side effects.
type Config struct {
	Sound bool
	Toast bool
}

// Adapter is the surface UI shells consume: a snapshot, the user actions,
// and side effects for newly arrived notifications.
type Adapter struct {
	store  Store
	sink   EffectSink
	cfg    Config
	logger zerolog.Logger

	mu          sync.Mutex
	retrier     Retrier
	unsubscribe func()
}

// NewAdapter creates an adapter. A nil sink discards effects.
func NewAdapter(store Store, sink EffectSink, cfg Config) *Adapter {
	if sink == nil {
		sink = EffectSinkFunc(func(Effect, models.Notification) {})
	}
	return &Adapter{
		store:  store,
		sink:   sink,
		cfg:    cfg,
		logger: logging.WithComponent("presenter"),
	}
}

// SetRetrier attaches the component Retry delegates to.
func (a *Adapter) SetRetrier(r Retrier) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retrier = r
}

// Start subscribes to store changes. Calling it twice has no effect.
func (a *Adapter) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unsubscribe != nil {
		return
	}
	a.unsubscribe = a.store.Subscribe(a.onChange)
}

// Stop removes the subscription.
func (a *Adapter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

func (a *Adapter) onChange(c inbox.Change) {
	for _, effect := range effectsFor(c, a.cfg) {
		metrics.Effects.WithLabelValues(string(effect)).Inc()
		a.sink.Emit(effect, *c.Event.Notification)
	}
}

// Snapshot returns the current inbox state.
func (a *Adapter) Snapshot() models.InboxState {
	return a.store.Snapshot()
}

// LoadMore fetches the next page of history.
func (a *Adapter) LoadMore(ctx context.Context) error {
	return a.store.LoadMore(ctx)
}

// MarkAsRead marks one notification read.
func (a *Adapter) MarkAsRead(ctx context.Context, id string) error {
	return a.store.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks every notification read.
func (a *Adapter) MarkAllAsRead(ctx context.Context) error {
	return a.store.MarkAllAsRead(ctx)
}

// DeleteNotification deletes one notification.
func (a *Adapter) DeleteNotification(ctx context.Context, id string) error {
	return a.store.DeleteNotification(ctx, id)
}

// Retry reconnects the push channel and resyncs.
func (a *Adapter) Retry(ctx context.Context) error {
	a.mu.Lock()
	r := a.retrier
	a.mu.Unlock()

	if r == nil {
		return ErrRetryUnavailable
	}
	a.logger.Info().Msg("Retry requested")
	return r.Retry(ctx)
}
