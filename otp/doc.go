// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package otp issues and verifies one-time codes that prove a voter controls
a phone address.

# Ledger

Pending codes live in a Ledger keyed by normalized voter id. MemoryLedger
is the in-process implementation; entries are replaced on re-issue and
consumed on successful verification:

	ledger := otp.NewMemoryLedger()

# Channels

The delivery capability is picked once at startup and shared by the
Issuer and Verifier:

	ch := otp.LocalOnly{Sink: notify.NewConsoleSink()}
	ch := otp.RemoteVerify{Client: twilioVerify, Fallback: notify.NewConsoleSink()}

With LocalOnly the ledger holds the code and its 30 second expiry. With
RemoteVerify the remote service owns the code; if starting a remote
verification fails, that single issue falls back to a local code.

# Verification States

	no entry           → no_otp
	remote, approved   → voter recorded, entry consumed
	remote, rejected   → invalid_code
	remote, transport  → verify_error
	local, now > exp   → expired, entry deleted
	local, wrong code  → invalid_code, entry kept
	local, right code  → voter recorded, entry consumed

# Sweeping

Abandoned entries can be removed periodically:

	c := cron.New()
	otp.ScheduleSweep(c, "@every 1m", ledger, time.Now)
	c.Start()
*/
package otp
