// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify delivers codes and messages to voters.

# Console

ConsoleSink implements otp.CodeSink by logging the code. It is used in
local mode and as the fallback when Twilio Verify cannot start a
verification:

	sink := notify.NewConsoleSink(nil) // logs via slog.Default()

# Twilio

NewTwilioClient builds one REST client for the process with a 10 second
request timeout. Two adapters share it:

	client := notify.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)

	// otp.RemoteVerifier backed by a Verify service
	remote := notify.NewTwilioVerify(client, cfg.TwilioVerifySID)

	// WhatsApp content templates through the Messages API
	messenger := notify.NewTwilioMessenger(client, cfg.TwilioFrom)

Verify receives bare E.164 numbers; the whatsapp: prefix only selects the
channel. SendTemplate requires both sender and recipient to carry the
whatsapp: prefix and reports failures as apperr kinds (invalid_to,
invalid_from, send_failed).
*/
package notify
