// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Session    SessionConfig    `koanf:"session"`
	Transport  TransportConfig  `koanf:"transport"`
	History    HistoryConfig    `koanf:"history"`
	Inbox      InboxConfig      `koanf:"inbox"`
	Effects    EffectsConfig    `koanf:"effects"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// SessionConfig holds the credential the daemon logs in with at startup.
// Both fields may be empty; the session can then be opened later through
// the local API.
type SessionConfig struct {
	Token   string `koanf:"token"`
	Subject string `koanf:"subject"`

	// ExpiryLeeway logs out this long before a JWT's exp claim.
	ExpiryLeeway time.Duration `koanf:"expiry_leeway" validate:"gte=0"`
}

// TransportConfig holds push channel settings.
type TransportConfig struct {
	// Endpoints are dialed round-robin on successive reconnect attempts.
	Endpoints []string `koanf:"endpoints" validate:"min=1,dive,url"`

	ReconnectDelay       time.Duration `koanf:"reconnect_delay" validate:"gt=0"`
	MaxReconnectAttempts int           `koanf:"max_reconnect_attempts" validate:"gt=0"`
	HandshakeTimeout     time.Duration `koanf:"handshake_timeout" validate:"gt=0"`
	PingInterval         time.Duration `koanf:"ping_interval" validate:"gt=0"`
	PongWait             time.Duration `koanf:"pong_wait" validate:"gt=0"`
	WriteTimeout         time.Duration `koanf:"write_timeout" validate:"gt=0"`
}

// HistoryConfig holds REST history client settings.
type HistoryConfig struct {
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
	Burst             int           `koanf:"burst" validate:"gt=0"`

	CircuitBreaker        bool          `koanf:"circuit_breaker"`
	CircuitBreakerTimeout time.Duration `koanf:"circuit_breaker_timeout" validate:"gt=0"`
}

// InboxConfig holds reconciliation store settings.
type InboxConfig struct {
	PageSize int `koanf:"page_size" validate:"gt=0,lte=100"`

	// DegradedPollInterval refreshes the unread count over REST while the
	// push channel is down. Zero disables polling.
	DegradedPollInterval time.Duration `koanf:"degraded_poll_interval" validate:"gte=0"`
}

// EffectsConfig controls user-facing side effects for new notifications.
type EffectsConfig struct {
	Sound bool   `koanf:"sound"`
	Toast bool   `koanf:"toast"`
	Sink  string `koanf:"sink" validate:"oneof=log terminal"`
}

// ServerConfig holds the local HTTP API settings.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic off disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig holds suture tree settings.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gt=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gt=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gt=0"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}
