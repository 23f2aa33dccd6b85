// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package otp

import "context"

// Values reported in the "via" field of an issue response.
const (
	ViaConsole      = "console"
	ViaTwilioVerify = "twilio-verify"
)

// CodeSink delivers a locally generated code to the voter.
type CodeSink interface {
	Deliver(ctx context.Context, voterID, phone, code string) error
}

// RemoteVerifier is a delivery service that generates, sends, and checks
// codes itself.
type RemoteVerifier interface {
	// Start begins a verification for phone over channel ("sms" or
	// "whatsapp") and returns the service's verification id.
	Start(ctx context.Context, phone, channel string) (string, error)
	// Check reports whether code is approved for phone. A non-nil error
	// means the service could not be reached or rejected the request.
	Check(ctx context.Context, phone, code string) (bool, error)
}

// Channel is the delivery capability chosen once at startup: LocalOnly or
// RemoteVerify.
type Channel interface {
	isChannel()
}

// LocalOnly stores codes in the ledger and hands them to Sink.
type LocalOnly struct {
	Sink CodeSink
}

// RemoteVerify delegates codes to Client. Fallback receives a local code
// when Client fails to start a verification.
type RemoteVerify struct {
	Client   RemoteVerifier
	Fallback CodeSink
}

func (LocalOnly) isChannel()    {}
func (RemoteVerify) isChannel() {}
