// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Vote API server.

Quickly Vote verifies voters by a one-time code sent to their phone and then
accepts exactly one vote per voter per election.

# Starting the Server

With no configuration the server runs on SQLite and prints OTP codes to
the log:

	go run .

Or with flags:

	go run . -p 3000 -t postgres -d "postgres://..."

A .env file in the working directory is loaded first; real environment
variables and then flags override it.

# Configuration

Core settings:

  - PORT (-p): Server port (default: 3000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): File path for sqlite, DSN for postgres (default: data.db)
  - STATIC_DIR (--static): Frontend files served at /
  - SECURE_COOKIES: Mark the admin cookie Secure (behind HTTPS)

Admin:

  - ADMIN_USER, ADMIN_PASS: Admin login
  - SESSION_SECRET (--session-secret): Signs admin session tokens

Twilio (optional):

  - TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_FROM: Enable WhatsApp templates
  - TWILIO_VERIFY_SID: Send OTPs through Twilio Verify over WhatsApp

Operations:

  - OTP_SWEEP_SCHEDULE: Cron spec for purging expired codes (empty disables)
  - CORS_ALLOWED_ORIGINS: Comma separated origins (default: none, same-origin only; * is rejected)
  - LOG_LEVEL: debug, info, warn, error (default: info)
  - LOG_FORMAT: text or json (default: text)

# Architecture

  - handlers: HTTP request handlers (otp, voting, elections, admin, messages)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON binding, admin sessions
  - otp: Code issuance and verification over a local or remote channel
  - votes: One vote per voter per election
  - notify: Console and Twilio delivery
  - store: SQL access for voters, elections, participants and votes
  - identity: Voter id and phone normalization
  - apperr: Error kinds shared across packages
  - auth: Admin credentials, session tokens, id and code generation
  - db: Connection and schema creation
  - models: Request/response types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
