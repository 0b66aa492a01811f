// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package inbox

import (
	"context"
	"fmt"

	"github.com/tomtom215/inboxsync/internal/logging"
	"github.com/tomtom215/inboxsync/internal/metrics"
	"github.com/tomtom215/inboxsync/internal/models"
)

// User actions run in two phases. The local phase applies the change
// optimistically and records an undo. The remote phase goes over the push
// channel when it is up and over REST otherwise. When the remote phase
// fails the undo is applied. A count delta is only given back if no
// authoritative count has been applied since the action started.

// undo compensates one optimistic action. It runs under s.mu.
type undo func(l *ledger, countUnchanged bool)

// begin runs the local phase. It returns the epoch and count version the
// undo must be checked against.
func (s *Store) begin(local func(l *ledger) undo) (epoch, countVersion uint64, u undo, ch Channel, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == models.PhaseInactive {
		return 0, 0, nil, nil, ErrInactive
	}

	u = local(&s.l)
	s.touchLocked()
	return s.epoch, s.l.countApplied, u, s.channel, nil
}

// settle runs the undo when the remote phase failed and escalates auth
// failures. A failure that resolves after the session it belongs to has
// ended is only returned to the caller.
func (s *Store) settle(ctx context.Context, action string, epoch, countVersion uint64, u undo, remoteErr error) error {
	if remoteErr == nil {
		return nil
	}

	s.mu.Lock()
	stale := epoch != s.epoch
	if !stale && u != nil {
		u(&s.l, s.l.countApplied == countVersion)
		s.touchLocked()
	}
	s.mu.Unlock()

	if stale {
		metrics.StaleResponses.WithLabelValues("epoch").Inc()
		logging.Ctx(ctx).Debug().Err(remoteErr).Str("action", action).Msg("Discarding failure from an ended session")
		return fmt.Errorf("%s: %w", action, remoteErr)
	}

	metrics.Rollbacks.WithLabelValues(action).Inc()
	logging.Ctx(ctx).Warn().Err(remoteErr).Str("action", action).Msg("Action failed, rolled back")

	s.escalate(remoteErr)
	return fmt.Errorf("%s: %w", action, remoteErr)
}

// MarkAsRead marks id read locally and then remotely.
func (s *Store) MarkAsRead(ctx context.Context, id string) error {
	epoch, version, u, ch, err := s.begin(func(l *ledger) undo {
		if !l.markRead(id) {
			return nil
		}
		return func(l *ledger, countUnchanged bool) {
			if l.markUnread(id) && countUnchanged {
				l.unread++
			}
		}
	})
	if err != nil {
		return err
	}

	remoteErr := viaChannel(ch, func(ch Channel) error { return ch.RequestMarkRead(id) },
		func() error { return s.api.MarkRead(ctx, id) })

	return s.settle(ctx, "mark_read", epoch, version, u, remoteErr)
}

// MarkAllAsRead marks everything read locally and then remotely.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	epoch, version, u, ch, err := s.begin(func(l *ledger) undo {
		flipped, prev := l.markAllRead()
		return func(l *ledger, countUnchanged bool) {
			restored := 0
			for _, id := range flipped {
				if l.markUnread(id) {
					restored++
				}
			}
			if countUnchanged {
				// Items gone or read again since then are not given back.
				if back := prev - (len(flipped) - restored); back > 0 {
					l.unread += back
				}
			}
		}
	})
	if err != nil {
		return err
	}

	remoteErr := viaChannel(ch, func(ch Channel) error { return ch.RequestMarkAllRead() },
		func() error { return s.api.MarkAllRead(ctx) })

	return s.settle(ctx, "mark_all_read", epoch, version, u, remoteErr)
}

// DeleteNotification removes id locally and then over REST. A failed
// delete puts the notification back where it was.
func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	epoch, version, u, _, err := s.begin(func(l *ledger) undo {
		r, ok := l.remove(id)
		if !ok {
			return nil
		}
		return func(l *ledger, countUnchanged bool) {
			l.restore(r)
			if r.wasUnread && countUnchanged {
				l.unread++
			}
		}
	})
	if err != nil {
		return err
	}

	return s.settle(ctx, "delete", epoch, version, u, s.api.DeleteNotification(ctx, id))
}

// LoadMore fetches the page after the loaded window. It is a no-op when
// there is nothing more or a load is already running.
func (s *Store) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == models.PhaseInactive {
		s.mu.Unlock()
		return ErrInactive
	}
	if !s.l.hasMore || s.loadingMore {
		s.mu.Unlock()
		return nil
	}
	n := s.l.currentPage + 1
	epoch := s.epoch
	s.loadingMore = true
	s.mu.Unlock()

	page, err := s.api.FetchPage(ctx, n, s.cfg.PageSize)

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		metrics.StaleResponses.WithLabelValues("epoch").Inc()
		return nil
	}
	s.loadingMore = false
	if err == nil && !s.l.applyPage(n, page) {
		metrics.StaleResponses.WithLabelValues("page").Inc()
	}
	s.touchLocked()
	s.mu.Unlock()

	if err != nil {
		s.escalate(err)
		return fmt.Errorf("load page %d: %w", n, err)
	}
	return nil
}

// viaChannel tries the push channel first and falls back to REST when the
// channel is missing or cannot send.
func viaChannel(ch Channel, push func(Channel) error, rest func() error) error {
	if ch != nil {
		err := push(ch)
		if err == nil {
			return nil
		}
		logging.Debug().Err(err).Msg("Push command not sent, falling back to REST")
	}
	return rest()
}
