// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/inboxsync/internal/history"
	"github.com/tomtom215/inboxsync/internal/inbox"
	"github.com/tomtom215/inboxsync/internal/models"
	"github.com/tomtom215/inboxsync/internal/presenter"
	"github.com/tomtom215/inboxsync/internal/session"
	"github.com/tomtom215/inboxsync/internal/validation"
)

// Error codes returned in APIError.Code.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeInactive       = "INACTIVE"
	CodeUpstream       = "UPSTREAM_ERROR"
	CodeUnavailable    = "UNAVAILABLE"
	CodeCanceled       = "CANCELED"
	CodeInternal       = "INTERNAL_ERROR"
)

// classifyError maps an engine error to a status code and APIError. The
// optimistic change behind a failed action has already been rolled back
// when this runs.
func classifyError(err error) (int, *models.APIError) {
	var (
		verr    *validation.Errors
		authErr *history.AuthError
		reqErr  *history.RequestError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, &models.APIError{Code: CodeValidation, Message: "Invalid request", Details: validationDetails(verr)}
	case errors.Is(err, history.ErrInvalidArgument):
		return http.StatusBadRequest, &models.APIError{Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, session.ErrSessionExpired):
		return http.StatusUnauthorized, &models.APIError{Code: CodeSessionExpired, Message: "Session token has expired"}
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, &models.APIError{Code: CodeUnauthorized, Message: "The server rejected the session"}
	case errors.Is(err, inbox.ErrInactive), errors.Is(err, session.ErrNotAuthenticated):
		return http.StatusConflict, &models.APIError{Code: CodeInactive, Message: "No active session"}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests), errors.Is(err, presenter.ErrRetryUnavailable):
		return http.StatusServiceUnavailable, &models.APIError{Code: CodeUnavailable, Message: "Notification service unavailable, try again later"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, &models.APIError{Code: CodeCanceled, Message: "Request canceled"}
	case errors.As(err, &reqErr):
		details := map[string]interface{}{"op": reqErr.Op}
		if history.IsNetworkError(err) {
			return http.StatusServiceUnavailable, &models.APIError{Code: CodeUnavailable, Message: "Notification service unreachable", Details: details}
		}
		details["status"] = reqErr.StatusCode
		return http.StatusBadGateway, &models.APIError{Code: CodeUpstream, Message: "Notification service request failed", Details: details}
	default:
		return http.StatusInternalServerError, &models.APIError{Code: CodeInternal, Message: "Internal error"}
	}
}

// respondActionError writes the envelope for a failed engine call.
func respondActionError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classifyError(err)
	if status >= http.StatusInternalServerError {
		logRequestError(r, err, apiErr.Code)
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Error:  apiErr,
	})
}
