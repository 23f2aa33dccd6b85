// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Settings are read in this order, later sources winning:

 1. .env in the working directory (optional, never overrides real env)
 2. Environment variables (parsed into Config by struct tags)
 3. CLI flags

# CLI Flags

	-p               Server port
	-d               Database URL (file path for sqlite)
	-t               Database type (sqlite or postgres)
	-static          Static file directory served at /
	-session-secret  Admin session signing secret

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE, STATIC_DIR, SECURE_COOKIES
	ADMIN_USER, ADMIN_PASS, SESSION_SECRET
	TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_FROM, TWILIO_VERIFY_SID
	OTP_SWEEP_SCHEDULE, CORS_ALLOWED_ORIGINS, LOG_LEVEL, LOG_FORMAT

# Twilio

Twilio is optional. TwilioEnabled needs account SID, auth token and a
sender; RemoteVerifyEnabled additionally needs a Verify service SID and
switches OTP delivery to Twilio Verify.

# Validation

ParseFlags returns an error for an out-of-range port, an unknown database
type, an empty session secret, a half-configured Twilio account, or an
unknown log level or format.
*/
package cliparse
