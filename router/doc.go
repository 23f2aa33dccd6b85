// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Vote API.

# Route Registration

NewServices builds the shared collaborators once; NewRouter creates a
configured http.ServeMux with all endpoints:

	svc, err := router.NewServices(db, cfg, channel, messenger)
	mux := router.NewRouter(db, cfg, svc)

The OTP channel (local console or Twilio Verify) and the WhatsApp messenger
are chosen by the caller, so tests can pass in-memory fakes.

# Endpoints

Health:

	GET /health

Voter verification and voting (public):

	POST /send-otp   - Issue a one-time code
	POST /verify-otp - Verify the code, register the voter
	POST /vote       - Cast one vote per election
	GET  /voter/{voterId}/election/{electionId}/status - Has this voter voted

Elections (public):

	GET /elections      - List elections
	GET /elections/{id} - Election with participants and tallies

Admin session:

	POST /admin/login         - Sets the admin_session cookie
	GET  /admin/check-session - Reports the logged-in admin
	POST /admin/logout        - Clears the cookie

Admin operations (require admin_session):

	POST /admin/elections              - Create election
	GET  /admin/elections              - Elections with tallies
	GET  /admin/elections/{id}/results - Results for one election
	GET  /admin/election-details/{id}  - Individual vote rows
	POST /send-whatsapp-template       - Send a WhatsApp content template

Root:

	GET / - Static files from STATIC_DIR, or a banner when unset
*/
package router
