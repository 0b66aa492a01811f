// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package inbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/inboxsync/internal/history"
	"github.com/tomtom215/inboxsync/internal/logging"
	"github.com/tomtom215/inboxsync/internal/metrics"
	"github.com/tomtom215/inboxsync/internal/models"
)

// ErrInactive is returned by actions while no session is active.
var ErrInactive = errors.New("inbox is not active")

// Channel is the push side used by the remote phase of read actions.
type Channel interface {
	RequestMarkRead(id string) error
	RequestMarkAllRead() error
}

// Change is delivered to subscribers after each applied channel event.
type Change struct {
	Event models.Event

	// Inserted is true when the event added a notification that was not
	// in the window before.
	Inserted bool

	State models.InboxState
}

// Config holds store settings.
type Config struct {
	PageSize int
}

// Store reconciles the push stream and the REST history into one inbox.
//
// Every mutation runs under one mutex. REST calls run outside it and their
// results re-enter through the same lock, checked against the session epoch
// and the request's sequence number. Channel events are applied in the
// order the transport delivers them.
type Store struct {
	cfg    Config
	api    history.API
	logger zerolog.Logger

	mu          sync.Mutex
	channel     Channel
	onAuthError func(error)
	phase       models.Phase
	conn        models.ConnectionState
	l           ledger
	epoch       uint64
	lastError   string
	updatedAt   time.Time
	loadingMore bool

	// sessionCtx scopes background fetches to the active session.
	sessionCtx    context.Context
	cancelSession context.CancelFunc

	subsMu sync.RWMutex
	subs   map[int]func(Change)
	nextID int

	wg sync.WaitGroup
}

// NewStore creates an inactive store.
func NewStore(cfg Config, api history.API) *Store {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	s := &Store{
		cfg:    cfg,
		api:    api,
		logger: logging.WithComponent("inbox"),
		phase:  models.PhaseInactive,
		conn:   models.ConnectionDisconnected,
		subs:   make(map[int]func(Change)),
	}
	s.updateMetricsLocked()
	return s
}

// AttachChannel sets the push channel used for read commands. Without one,
// every remote phase goes over REST.
func (s *Store) AttachChannel(ch Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channel = ch
}

// OnAuthError registers the hook called (outside the lock) when a REST call
// reports that the session was rejected.
func (s *Store) OnAuthError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAuthError = fn
}

// Subscribe registers fn for channel-driven changes. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

// Activate starts a new session: empty state, phase loading, and the
// initial page-1 and unread-count load in the background.
func (s *Store) Activate() {
	s.mu.Lock()
	if s.cancelSession != nil {
		s.cancelSession()
	}
	s.epoch++
	epoch := s.epoch
	s.sessionCtx, s.cancelSession = context.WithCancel(context.Background())
	s.l = ledger{}
	s.phase = models.PhaseLoading
	s.conn = models.ConnectionConnecting
	s.lastError = ""
	s.loadingMore = false
	s.touchLocked()
	s.mu.Unlock()

	s.logger.Info().Uint64("epoch", epoch).Msg("Inbox activated")
	s.refreshAsync(epoch)
}

// Deactivate clears all state. Results of requests still in flight are
// discarded when they return.
func (s *Store) Deactivate() {
	s.mu.Lock()
	if s.phase == models.PhaseInactive {
		s.mu.Unlock()
		return
	}
	if s.cancelSession != nil {
		s.cancelSession()
		s.cancelSession = nil
	}
	s.epoch++
	s.l = ledger{}
	s.phase = models.PhaseInactive
	s.conn = models.ConnectionDisconnected
	s.lastError = ""
	s.loadingMore = false
	s.touchLocked()
	s.mu.Unlock()

	s.logger.Info().Msg("Inbox deactivated")
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() models.InboxState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Wait blocks until background fetches have finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// HandleEvent applies one channel event. It implements transport.Handler.
func (s *Store) HandleEvent(ev models.Event) {
	s.mu.Lock()
	if s.phase == models.PhaseInactive {
		s.mu.Unlock()
		return
	}

	epoch := s.epoch
	inserted, resync := s.applyLocked(ev)
	s.touchLocked()
	state := s.snapshotLocked()
	s.mu.Unlock()

	metrics.EventsApplied.WithLabelValues(string(ev.Kind)).Inc()

	if resync {
		metrics.Resyncs.Inc()
		s.logger.Info().Msg("Reconnected, resyncing page 1 and unread count")
		s.refreshAsync(epoch)
	}

	s.notify(Change{Event: ev, Inserted: inserted, State: state})
}

// applyLocked is the event reducer. It returns whether a notification was
// inserted and whether a resync is due.
//
//nolint:gocyclo // one case per event kind
func (s *Store) applyLocked(ev models.Event) (inserted, resync bool) {
	switch ev.Kind {
	case models.EventConnected:
		s.conn = models.ConnectionConnected
		switch s.phase {
		case models.PhaseLoading:
			s.phase = models.PhaseLive
		case models.PhaseDegraded:
			s.phase = models.PhaseLive
			resync = true
		}

	case models.EventDisconnected:
		s.conn = models.ConnectionConnecting
		if s.phase == models.PhaseLive {
			s.phase = models.PhaseDegraded
		}

	case models.EventConnectionFailed:
		s.conn = models.ConnectionDisconnected
		if s.phase == models.PhaseLoading || s.phase == models.PhaseLive {
			s.phase = models.PhaseDegraded
		}
		if ev.Err != nil {
			s.lastError = ev.Err.Error()
		}

	case models.EventNotificationReceived, models.EventSystemAlertReceived:
		if ev.Notification != nil {
			inserted = s.l.receive(*ev.Notification)
		}

	case models.EventUnreadCountPushed:
		s.l.pushCount(ev.Count)

	case models.EventReadAcked:
		s.l.markRead(ev.NotificationID)

	case models.EventAllReadAcked:
		s.l.markAllRead()

	case models.EventLatestSnapshot:
		s.l.replaceHead(ev.Notifications)

	case models.EventServerError:
		s.lastError = ev.Message
		s.logger.Warn().Str("message", ev.Message).Msg("Server reported an error")

	default:
		s.logger.Debug().Str("event", string(ev.Kind)).Msg("Ignoring unknown event")
	}
	return inserted, resync
}

func (s *Store) notify(c Change) {
	s.subsMu.RLock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.RUnlock()

	for _, fn := range subs {
		fn(c)
	}
}

// Refresh refetches page 1 and the unread count and waits for both.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == models.PhaseInactive {
		s.mu.Unlock()
		return ErrInactive
	}
	epoch := s.epoch
	s.mu.Unlock()

	var wg sync.WaitGroup
	var pageErr, countErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		pageErr = s.fetchPage1(ctx, epoch)
	}()
	go func() {
		defer wg.Done()
		countErr = s.fetchUnreadCount(ctx, epoch)
	}()
	wg.Wait()

	if pageErr != nil {
		return pageErr
	}
	return countErr
}

// RefreshUnread refetches only the unread count.
func (s *Store) RefreshUnread(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == models.PhaseInactive {
		s.mu.Unlock()
		return ErrInactive
	}
	epoch := s.epoch
	s.mu.Unlock()

	return s.fetchUnreadCount(ctx, epoch)
}

// refreshAsync issues page 1 and the unread count in the background.
func (s *Store) refreshAsync(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch || s.sessionCtx == nil {
		s.mu.Unlock()
		return
	}
	ctx := logging.ContextWithNewCorrelationID(s.sessionCtx)
	s.mu.Unlock()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		_ = s.fetchPage1(ctx, epoch)
	}()
	go func() {
		defer s.wg.Done()
		_ = s.fetchUnreadCount(ctx, epoch)
	}()
}

func (s *Store) fetchPage1(ctx context.Context, epoch uint64) error {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return ErrInactive
	}
	seq, mark := s.l.issuePage1()
	s.mu.Unlock()

	page, err := s.api.FetchPage(ctx, 1, s.cfg.PageSize)

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		metrics.StaleResponses.WithLabelValues("epoch").Inc()
		return nil
	}
	if err != nil {
		s.lastError = err.Error()
		s.touchLocked()
		s.mu.Unlock()
		s.fetchFailed(ctx, "fetch_page", err)
		return err
	}
	if !s.l.applyPage1(seq, mark, page) {
		s.mu.Unlock()
		metrics.StaleResponses.WithLabelValues("page1").Inc()
		logging.Ctx(ctx).Debug().Uint64("seq", seq).Msg("Discarding stale page-1 response")
		return nil
	}
	s.touchLocked()
	s.mu.Unlock()
	return nil
}

func (s *Store) fetchUnreadCount(ctx context.Context, epoch uint64) error {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return ErrInactive
	}
	version := s.l.issueCount()
	s.mu.Unlock()

	count, err := s.api.FetchUnreadCount(ctx)

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		metrics.StaleResponses.WithLabelValues("epoch").Inc()
		return nil
	}
	if err != nil {
		s.lastError = err.Error()
		s.touchLocked()
		s.mu.Unlock()
		s.fetchFailed(ctx, "fetch_unread_count", err)
		return err
	}
	if !s.l.setCount(count, version) {
		s.mu.Unlock()
		metrics.StaleResponses.WithLabelValues("unread_count").Inc()
		return nil
	}
	s.touchLocked()
	s.mu.Unlock()
	return nil
}

func (s *Store) fetchFailed(ctx context.Context, op string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	logging.Ctx(ctx).Warn().Err(err).Str("op", op).Msg("History fetch failed")
	s.escalate(err)
}

// escalate hands auth failures to the session owner. Must be called
// without s.mu held.
func (s *Store) escalate(err error) {
	if !history.IsAuthError(err) {
		return
	}
	s.mu.Lock()
	hook := s.onAuthError
	s.mu.Unlock()

	if hook != nil {
		hook(err)
	}
}

func (s *Store) snapshotLocked() models.InboxState {
	return models.InboxState{
		Phase:       s.phase,
		Connection:  s.conn,
		Items:       s.l.notifications(),
		UnreadCount: s.l.unread,
		Pagination: models.Pagination{
			CurrentPage: s.l.currentPage,
			HasMore:     s.l.hasMore,
		},
		Epoch:     s.epoch,
		LastError: s.lastError,
		UpdatedAt: s.updatedAt,
	}
}

func (s *Store) touchLocked() {
	s.updatedAt = time.Now()
	s.updateMetricsLocked()
}

func (s *Store) updateMetricsLocked() {
	metrics.UnreadCount.Set(float64(s.l.unread))
	metrics.Items.Set(float64(len(s.l.entries)))
	metrics.Phase.Set(phaseToFloat(s.phase))
}

func phaseToFloat(p models.Phase) float64 {
	switch p {
	case models.PhaseLoading:
		return 1
	case models.PhaseLive:
		return 2
	case models.PhaseDegraded:
		return 3
	default:
		return 0
	}
}
