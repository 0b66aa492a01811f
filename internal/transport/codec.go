// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package transport

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/inboxsync/internal/models"
	"github.com/tomtom215/inboxsync/internal/validation"
)

// Outbound command names.
const (
	CommandMarkRead    = "notification:mark-read"
	CommandMarkAllRead = "notification:mark-all-read"
)

// Protocol error reasons, also used as metric labels.
const (
	ReasonMalformedJSON  = "malformed_json"
	ReasonUnknownEvent   = "unknown_event"
	ReasonInvalidPayload = "invalid_payload"
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ProtocolError describes a frame that could not be turned into an event.
type ProtocolError struct {
	Reason string
	Event  string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("protocol error (%s) in %q frame: %v", e.Reason, e.Event, e.Err)
	}
	return fmt.Sprintf("protocol error (%s): %v", e.Reason, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

type unreadCountPayload struct {
	Count *int `json:"count"`
}

type readAckPayload struct {
	NotificationID string `json:"notificationId" validate:"required,max=256"`
}

// latestPayload wraps the bare notification array of a latest frame so
// each item can be validated.
type latestPayload struct {
	Notifications []models.Notification `validate:"dive"`
}

type serverErrorPayload struct {
	Message string `json:"message"`
}

// Decode turns one text frame into a domain event. Any failure is a
// *ProtocolError and the frame must be dropped.
func Decode(data []byte, receivedAt time.Time) (models.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return models.Event{}, &ProtocolError{Reason: ReasonMalformedJSON, Err: err}
	}

	ev := models.Event{Kind: models.EventKind(env.Event), ReceivedAt: receivedAt}

	switch ev.Kind {
	case models.EventNotificationReceived, models.EventSystemAlertReceived:
		var n models.Notification
		if err := unmarshalPayload(env, &n); err != nil {
			return models.Event{}, err
		}
		if ev.Kind == models.EventSystemAlertReceived && n.Type == "" {
			n.Type = models.NotificationTypeSystemAlert
		}
		if err := validatePayload(env, &n); err != nil {
			return models.Event{}, err
		}
		ev.Notification = &n

	case models.EventUnreadCountPushed:
		var p unreadCountPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return models.Event{}, err
		}
		if p.Count == nil {
			return models.Event{}, invalid(env, fmt.Errorf("count is required"))
		}
		if *p.Count < 0 {
			return models.Event{}, invalid(env, fmt.Errorf("count must be non-negative, got %d", *p.Count))
		}
		ev.Count = *p.Count

	case models.EventReadAcked:
		var p readAckPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return models.Event{}, err
		}
		if err := validatePayload(env, &p); err != nil {
			return models.Event{}, err
		}
		ev.NotificationID = p.NotificationID

	case models.EventAllReadAcked:
		// no payload

	case models.EventLatestSnapshot:
		var p latestPayload
		if err := unmarshalPayload(env, &p.Notifications); err != nil {
			return models.Event{}, err
		}
		if err := validatePayload(env, &p); err != nil {
			return models.Event{}, err
		}
		ev.Notifications = p.Notifications

	case models.EventServerError:
		var p serverErrorPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return models.Event{}, err
		}
		ev.Message = p.Message

	default:
		return models.Event{}, &ProtocolError{
			Reason: ReasonUnknownEvent,
			Event:  env.Event,
			Err:    fmt.Errorf("unknown event"),
		}
	}

	return ev, nil
}

func unmarshalPayload(env Envelope, v interface{}) error {
	if len(env.Data) == 0 {
		return invalid(env, fmt.Errorf("missing data"))
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return &ProtocolError{Reason: ReasonMalformedJSON, Event: env.Event, Err: err}
	}
	return nil
}

func validatePayload(env Envelope, v interface{}) error {
	if err := validation.ValidateStruct(v); err != nil {
		return invalid(env, err)
	}
	return nil
}

func invalid(env Envelope, err error) *ProtocolError {
	return &ProtocolError{Reason: ReasonInvalidPayload, Event: env.Event, Err: err}
}

type markReadCommand struct {
	NotificationID string `json:"notificationId"`
}

// EncodeCommand builds an outbound frame. payload may be nil.
func EncodeCommand(command string, payload interface{}) ([]byte, error) {
	env := Envelope{Event: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", command, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}
