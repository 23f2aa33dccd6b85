// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/middleware"
)

// statusByKind maps error kinds to HTTP status codes
var statusByKind = map[string]int{
	apperr.KindMissing:            http.StatusBadRequest,
	apperr.KindInvalidVoterID:     http.StatusBadRequest,
	apperr.KindInvalidPhone:       http.StatusBadRequest,
	apperr.KindInvalidPayload:     http.StatusBadRequest,
	apperr.KindNoOTP:              http.StatusBadRequest,
	apperr.KindExpired:            http.StatusBadRequest,
	apperr.KindInvalidCode:        http.StatusBadRequest,
	apperr.KindVerifyError:        http.StatusBadRequest,
	apperr.KindVoterNotVerified:   http.StatusForbidden,
	apperr.KindAlreadyVoted:       http.StatusForbidden,
	apperr.KindInvalidParticipant: http.StatusNotFound,
	apperr.KindNotFound:           http.StatusNotFound,
	apperr.KindAdminRequired:      http.StatusUnauthorized,
	apperr.KindInvalidCredentials: http.StatusUnauthorized,
	apperr.KindDBError:            http.StatusInternalServerError,
	apperr.KindSessionError:       http.StatusInternalServerError,

	apperr.KindTwilioNotConfigured: http.StatusBadRequest,
	apperr.KindInvalidTo:           http.StatusBadRequest,
	apperr.KindInvalidFrom:         http.StatusBadRequest,
	apperr.KindSendFailed:          http.StatusInternalServerError,
}

// writeError renders err as a JSON error body. Errors without a kind are
// logged and reported as db_error, since storage is the only collaborator
// that returns them.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.DB(err)
	}

	status, ok := statusByKind[e.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"kind", e.Kind,
			"error", err,
		)
	}

	middleware.AppErrorResponse(w, status, e)
}
