// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package apperr defines the error kinds returned to API clients.
//
// Every failure a client can act on carries a stable machine-readable kind
// ("no_otp", "already_voted", ...). Sentinels compare by kind, so a wrapped
// or detail-carrying copy still matches with errors.Is:
//
//	err := apperr.VerifyError(twilioErr)
//	errors.Is(err, apperr.ErrVerifyError) // true
package apperr

import (
	"errors"
)

// Kinds surfaced in the "error" field of a response body.
const (
	KindMissing            = "missing"
	KindInvalidVoterID     = "invalid_voter_id"
	KindInvalidPhone       = "invalid_phone"
	KindNoOTP              = "no_otp"
	KindExpired            = "expired"
	KindInvalidCode        = "invalid_code"
	KindVerifyError        = "verify_error"
	KindVoterNotVerified   = "voter_not_verified"
	KindAlreadyVoted       = "already_voted"
	KindInvalidParticipant = "invalid_participant"
	KindInvalidPayload     = "invalid_payload"
	KindNotFound           = "not_found"
	KindAdminRequired      = "admin_required"
	KindInvalidCredentials = "invalid_credentials"
	KindDBError            = "db_error"
	KindSessionError       = "session_error"

	// Outbound messaging
	KindTwilioNotConfigured = "twilio_not_configured"
	KindInvalidTo           = "invalid_to"
	KindInvalidFrom         = "invalid_from"
	KindSendFailed          = "send_failed"
)

// Error is a client-facing failure with a stable kind.
type Error struct {
	Kind    string
	Message string
	Hint    string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Kind + ": " + e.Detail
	}
	if e.Message != "" {
		return e.Kind + ": " + e.Message
	}
	return e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrMissing            = &Error{Kind: KindMissing}
	ErrInvalidVoterID     = &Error{Kind: KindInvalidVoterID, Hint: "Format: V followed by 5 digits, e.g. V12345"}
	ErrInvalidPhone       = &Error{Kind: KindInvalidPhone, Hint: "Use E.164 like +14155552671 or whatsapp:+14155552671"}
	ErrNoOTP              = &Error{Kind: KindNoOTP}
	ErrExpired            = &Error{Kind: KindExpired}
	ErrInvalidCode        = &Error{Kind: KindInvalidCode}
	ErrVerifyError        = &Error{Kind: KindVerifyError}
	ErrVoterNotVerified   = &Error{Kind: KindVoterNotVerified}
	ErrAlreadyVoted       = &Error{Kind: KindAlreadyVoted}
	ErrInvalidParticipant = &Error{Kind: KindInvalidParticipant}
	ErrInvalidPayload     = &Error{Kind: KindInvalidPayload}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrAdminRequired      = &Error{Kind: KindAdminRequired}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrDB                 = &Error{Kind: KindDBError}

	ErrTwilioNotConfigured = &Error{Kind: KindTwilioNotConfigured}
	ErrInvalidTo           = &Error{Kind: KindInvalidTo, Hint: "Use whatsapp:+<E.164>"}
	ErrInvalidFrom         = &Error{Kind: KindInvalidFrom, Hint: "TWILIO_FROM must be whatsapp:+<E.164>"}
)

// SendFailed wraps a provider send failure, keeping its text as detail.
func SendFailed(err error) *Error {
	return &Error{Kind: KindSendFailed, Detail: err.Error(), Err: err}
}

// VerifyError wraps a remote-verify transport failure, keeping its text as detail.
func VerifyError(err error) *Error {
	return &Error{Kind: KindVerifyError, Detail: err.Error(), Err: err}
}

// SessionError wraps a failure to sign an admin session token.
func SessionError(err error) *Error {
	return &Error{Kind: KindSessionError, Message: "Failed to create session", Err: err}
}

// DB wraps a store failure. The underlying error is kept for logging but
// never rendered to clients.
func DB(err error) *Error {
	return &Error{Kind: KindDBError, Err: err}
}

// KindOf returns the kind of err, or "" if err carries none.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
