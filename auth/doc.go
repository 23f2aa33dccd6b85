// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier, code, and admin session utilities.

# ID Generation

Record IDs are random UUIDv4 strings:

	id := auth.GenerateID()

# One-Time Codes

OTP codes are uniformly random integers in 100000..999999 rendered as
text, so they are always exactly 6 digits with no zero padding:

	code, err := auth.GenerateOTPCode()

# Admin Credentials

The admin password is hashed with bcrypt once at startup and never kept
in plain text afterwards:

	creds, err := auth.NewCredentials(cfg.AdminUser, cfg.AdminPass)
	err = creds.Check(username, password) // ErrInvalidCredentials on mismatch

# Admin Sessions

Sessions are HS256 JWTs carried in an HttpOnly cookie. They expire after
SessionTTL (24h):

	sessions := auth.NewSessions(cfg.SessionSecret)
	token, expiresAt, err := sessions.Issue(creds.Username())
	username, err := sessions.Parse(token) // ErrInvalidSession when bad or expired
*/
package auth
