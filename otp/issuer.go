// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package otp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/identity"
)

// TTL is the fixed validity window of a local code.
const TTL = 30 * time.Second

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

type options struct {
	now     Clock
	newCode func() (string, error)
}

type Option func(*options)

func WithClock(now Clock) Option {
	return func(o *options) { o.now = now }
}

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(o *options) { o.newCode = gen }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, newCode: auth.GenerateOTPCode}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Receipt describes an issued code without revealing it.
type Receipt struct {
	VoterID string
	Via     string
	TTL     time.Duration
}

// Issuer creates pending entries and starts delivery.
type Issuer struct {
	ledger  Ledger
	channel Channel
	opts    options
}

func NewIssuer(ledger Ledger, channel Channel, opts ...Option) *Issuer {
	return &Issuer{ledger: ledger, channel: channel, opts: buildOptions(opts)}
}

// Issue validates the inputs, records a pending entry (replacing any
// earlier one for the same voter id), and starts delivery.
//
// With a RemoteVerify channel the remote service is asked to send the code.
// If that call fails the request falls back to a local code for this issue
// only; the caller still sees success, with Via reporting "console".
func (i *Issuer) Issue(ctx context.Context, rawVoterID, rawPhone string) (Receipt, error) {
	voterID, err := identity.ValidateVoterID(rawVoterID)
	if err != nil {
		return Receipt{}, err
	}
	phone, err := identity.ValidatePhone(rawPhone)
	if err != nil {
		return Receipt{}, err
	}

	expiresAt := i.opts.now().Add(TTL)

	var (
		sink        CodeSink
		placeholder *Entry
	)
	switch ch := i.channel.(type) {
	case RemoteVerify:
		pending := Entry{ExpiresAt: expiresAt, Phone: phone, Mode: ModeRemote}
		i.ledger.Set(voterID, pending)

		sid, err := ch.Client.Start(ctx, phone, identity.ChannelHint(phone))
		if err == nil {
			slog.Info("remote verification started", "voter_id", voterID, "sid", sid)
			return Receipt{VoterID: voterID, Via: ViaTwilioVerify, TTL: TTL}, nil
		}
		slog.Warn("remote verification failed, falling back to local code",
			"voter_id", voterID,
			"error", err,
		)
		sink = ch.Fallback
		placeholder = &pending
	case LocalOnly:
		sink = ch.Sink
	default:
		return Receipt{}, fmt.Errorf("unsupported otp channel %T", i.channel)
	}

	code, err := i.opts.newCode()
	if err != nil {
		// The remote never started, so its entry must not route verifies there.
		if placeholder != nil {
			i.ledger.CompareAndDelete(voterID, *placeholder)
		}
		return Receipt{}, err
	}
	i.ledger.Set(voterID, Entry{Code: code, ExpiresAt: expiresAt, Phone: phone, Mode: ModeLocal})

	// Delivery is best-effort; the entry stays valid either way.
	if sink != nil {
		if err := sink.Deliver(ctx, voterID, phone, code); err != nil {
			slog.Warn("otp delivery failed", "voter_id", voterID, "error", err)
		}
	}

	return Receipt{VoterID: voterID, Via: ViaConsole, TTL: TTL}, nil
}
