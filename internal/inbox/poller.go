// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package inbox

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/inboxsync/internal/logging"
	"github.com/tomtom215/inboxsync/internal/models"
)

// pageRefreshEvery is how many degraded ticks share one page-1 refetch.
// The other ticks refresh only the unread count.
const pageRefreshEvery = 5

// UnreadPoller keeps the inbox roughly current over REST while the push
// channel is down. It only polls in the degraded phase. The first tick of
// an outage refetches page 1 too.
type UnreadPoller struct {
	store    *Store
	interval time.Duration
	ticks    int
}

// NewUnreadPoller creates a poller. An interval of zero disables polling.
func NewUnreadPoller(store *Store, interval time.Duration) *UnreadPoller {
	return &UnreadPoller{store: store, interval: interval}
}

// Serve implements suture.Service. It returns when ctx is canceled.
func (p *UnreadPoller) Serve(ctx context.Context) error {
	if p.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *UnreadPoller) poll(ctx context.Context) {
	if p.store.Snapshot().Phase != models.PhaseDegraded {
		p.ticks = 0
		return
	}

	refresh := p.store.RefreshUnread
	if p.ticks%pageRefreshEvery == 0 {
		refresh = p.store.Refresh
	}
	p.ticks++

	ctx = logging.ContextWithNewCorrelationID(ctx)
	if err := refresh(ctx); err != nil && !errors.Is(err, ErrInactive) && ctx.Err() == nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Degraded refresh failed")
	}
}

// String implements fmt.Stringer for suture logging.
func (p *UnreadPoller) String() string {
	return "unread-poller"
}
