// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package presenter

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/inboxsync/internal/inbox"
	"github.com/tomtom215/inboxsync/internal/models"
)

// Effect is a user-facing side effect of an inbox change.
type Effect string

const (
	EffectSound Effect = "sound"
	EffectToast Effect = "toast"
)

// EffectSink renders effects. Implementations must be safe for concurrent use.
type EffectSink interface {
	Emit(effect Effect, n models.Notification)
}

// EffectSinkFunc adapts a function to EffectSink.
type EffectSinkFunc func(effect Effect, n models.Notification)

// Emit calls f.
func (f EffectSinkFunc) Emit(effect Effect, n models.Notification) { f(effect, n) }

type effectRule struct {
	sound bool
	toast bool
}

// effectPolicy lists the event kinds that produce effects. Kinds not listed
// produce none.
var effectPolicy = map[models.EventKind]effectRule{
	models.EventNotificationReceived: {sound: true, toast: true},
	models.EventSystemAlertReceived:  {sound: true, toast: true},
}

// effectsFor returns the effects a change produces under cfg. Only changes
// that inserted a new notification qualify.
func effectsFor(c inbox.Change, cfg Config) []Effect {
	if !c.Inserted || c.Event.Notification == nil {
		return nil
	}
	rule, ok := effectPolicy[c.Event.Kind]
	if !ok {
		return nil
	}

	var out []Effect
	if rule.sound && cfg.Sound {
		out = append(out, EffectSound)
	}
	if rule.toast && cfg.Toast {
		out = append(out, EffectToast)
	}
	return out
}

// LogSink writes effects to a zerolog logger. It is the default for
// headless runs.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit implements EffectSink.
func (s *LogSink) Emit(effect Effect, n models.Notification) {
	s.logger.Info().
		Str("effect", string(effect)).
		Str("notification_id", n.ID).
		Str("type", string(n.Type)).
		Int("priority", n.Type.Priority()).
		Str("title", n.Title).
		Msg("Notification effect")
}

// TerminalSink rings the terminal bell for sounds and prints one line per
// toast.
type TerminalSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminalSink creates a TerminalSink writing to w.
func NewTerminalSink(w io.Writer) *TerminalSink {
	return &TerminalSink{w: w}
}

// Emit implements EffectSink.
func (s *TerminalSink) Emit(effect Effect, n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch effect {
	case EffectSound:
		_, _ = io.WriteString(s.w, "\a")
	case EffectToast:
		line := fmt.Sprintf("[%s] %s", n.Type, n.Title)
		if msg := strings.TrimSpace(n.Message); msg != "" {
			line += ": " + msg
		}
		_, _ = fmt.Fprintln(s.w, line)
	}
}
