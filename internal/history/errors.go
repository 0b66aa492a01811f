// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package history

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidArgument is returned before any request is made when a
// parameter is out of range.
var ErrInvalidArgument = errors.New("invalid argument")

// AuthError means the server rejected the session credential.
type AuthError struct {
	Op         string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: session rejected (status %d)", e.Op, e.StatusCode)
}

// RequestError is a network failure (StatusCode 0), a non-2xx response or
// an undecodable body.
type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is (or wraps) an *AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNetworkError reports whether err is a request that never got a response.
func IsNetworkError(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.StatusCode == 0
}

// isClientFault reports errors the server is not to blame for. They do not
// count against the circuit breaker.
func isClientFault(err error) bool {
	if IsAuthError(err) || errors.Is(err, ErrInvalidArgument) {
		return true
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode >= http.StatusBadRequest && re.StatusCode < http.StatusInternalServerError
	}
	return false
}
