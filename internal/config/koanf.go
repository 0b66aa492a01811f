// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"inboxsync.yaml",
	"inboxsync.yml",
	"/etc/inboxsync/config.yaml",
	"/etc/inboxsync/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "INBOXSYNC_CONFIG"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			ExpiryLeeway: 5 * time.Second,
		},
		Transport: TransportConfig{
			Endpoints:            []string{"ws://127.0.0.1:8080/ws/notifications"},
			ReconnectDelay:       time.Second,
			MaxReconnectAttempts: 10,
			HandshakeTimeout:     10 * time.Second,
			PingInterval:         25 * time.Second,
			PongWait:             60 * time.Second,
			WriteTimeout:         10 * time.Second,
		},
		History: HistoryConfig{
			BaseURL:               "http://127.0.0.1:8080/api",
			Timeout:               30 * time.Second,
			RequestsPerSecond:     10,
			Burst:                 5,
			CircuitBreaker:        true,
			CircuitBreakerTimeout: 2 * time.Minute,
		},
		Inbox: InboxConfig{
			PageSize:             20,
			DegradedPollInterval: time.Minute,
		},
		Effects: EffectsConfig{
			Sound: true,
			Toast: true,
			Sink:  "log",
		},
		Server: ServerConfig{
			Enabled:         true,
			Host:            "127.0.0.1",
			Port:            7811,
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Load loads configuration using Koanf with layered sources:
//  1. Struct defaults
//  2. Config file (optional, YAML)
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"transport.endpoints",
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings, the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Session
	"inbox_token":         "session.token",
	"inbox_subject":       "session.subject",
	"inbox_expiry_leeway": "session.expiry_leeway",

	// Transport
	"inbox_push_url":               "transport.endpoints",
	"inbox_reconnect_delay":        "transport.reconnect_delay",
	"inbox_max_reconnect_attempts": "transport.max_reconnect_attempts",
	"inbox_handshake_timeout":      "transport.handshake_timeout",
	"inbox_ping_interval":          "transport.ping_interval",

	// History
	"inbox_api_url":                 "history.base_url",
	"inbox_api_timeout":             "history.timeout",
	"inbox_api_rps":                 "history.requests_per_second",
	"inbox_api_burst":               "history.burst",
	"inbox_circuit_breaker":         "history.circuit_breaker",
	"inbox_circuit_breaker_timeout": "history.circuit_breaker_timeout",

	// Inbox
	"inbox_page_size":     "inbox.page_size",
	"inbox_degraded_poll": "inbox.degraded_poll_interval",
	"inbox_sound":         "effects.sound",
	"inbox_toast":         "effects.toast",
	"inbox_effects_sink":  "effects.sink",

	// Local API
	"inbox_http_enabled":  "server.enabled",
	"inbox_http_host":     "server.host",
	"inbox_http_port":     "server.port",
	"inbox_cors_origins":  "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - INBOX_PUSH_URL -> transport.endpoints
//   - INBOX_API_URL -> history.base_url
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unmapped keys are skipped so unrelated environment variables never
	// pollute the config.
	return ""
}
