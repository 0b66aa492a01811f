// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/inboxsync/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateTransport(); err != nil {
		return err
	}

	if err := c.validateSession(); err != nil {
		return err
	}

	return c.validateServer()
}

func (c *Config) validateTransport() error {
	for _, endpoint := range c.Transport.Endpoints {
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("transport.endpoints: %q: %w", endpoint, err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("transport.endpoints: %q must use ws:// or wss://", endpoint)
		}
	}
	if c.Transport.PongWait <= c.Transport.PingInterval {
		return fmt.Errorf("transport.pong_wait (%s) must be longer than transport.ping_interval (%s)",
			c.Transport.PongWait, c.Transport.PingInterval)
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.Subject != "" && c.Session.Token == "" {
		return fmt.Errorf("session.subject is set but session.token is empty")
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	for _, origin := range c.Server.CORSOrigins {
		if strings.TrimSpace(origin) == "*" && len(c.Server.CORSOrigins) > 1 {
			return fmt.Errorf("server.cors_origins: \"*\" cannot be combined with explicit origins")
		}
	}
	return nil
}
