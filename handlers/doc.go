// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Vote API.

# Handler Types

Each handler is a struct holding the collaborators it needs:

  - OTPHandler: Issue and verify one-time codes (otp.Issuer, otp.Verifier)
  - VotingHandler: Cast votes and report vote status (votes.Ledger)
  - ElectionHandler: Public election listing
  - AdminHandler: Admin session and election management
  - MessageHandler: WhatsApp template sending

Handlers are created via constructor functions:

	otpHandler := handlers.NewOTPHandler(issuer, verifier)
	adminHandler := handlers.NewAdminHandler(db, cfg, creds, sessions)

# Voter Flow

A voter proves control of a phone number, then votes once per election:

	POST /send-otp    → SendOTP (code valid 30s, never returned)
	POST /verify-otp  → VerifyOTP (creates the voter record)
	POST /vote        → CastVote
	GET  /voter/{voterId}/election/{electionId}/status → VoteStatus

Verification with a wrong code can be retried until the code expires. A
second vote in the same election is rejected with already_voted, including
when two votes race.

# Admin

	POST /admin/login                    → Login (sets admin_session cookie)
	GET  /admin/check-session            → CheckSession
	POST /admin/logout                   → Logout
	POST /admin/elections                → CreateElection
	GET  /admin/elections                → ListElections
	GET  /admin/elections/{id}/results   → Results
	GET  /admin/election-details/{id}    → ElectionDetails
	POST /send-whatsapp-template         → MessageHandler.SendTemplate

Everything except login, check-session and logout sits behind
middleware.RequireAdmin.

# Errors

Failures are written by writeError as {"error": kind, ...}. The kind picks
the status: 400 for input and code problems, 403 for vote state, 404 for
unknown elections or participants, 401 for admin auth, 500 for storage and
provider failures.
*/
package handlers
