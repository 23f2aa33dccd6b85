// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package otp

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/identity"
	"github.com/danielhkuo/quickly-vote/models"
)

// VoterRegistry is the durable voter table the verifier promotes into.
type VoterRegistry interface {
	FindVoter(ctx context.Context, voterID string) (models.Voter, bool, error)
	// InsertVoter creates v unless a voter with the same VoterID exists,
	// and reports whether a row was created.
	InsertVoter(ctx context.Context, v models.Voter) (bool, error)
}

// Verifier checks submitted codes and records verified voters.
type Verifier struct {
	ledger Ledger
	remote RemoteVerifier
	voters VoterRegistry
	opts   options
}

func NewVerifier(ledger Ledger, channel Channel, voters VoterRegistry, opts ...Option) *Verifier {
	v := &Verifier{ledger: ledger, voters: voters, opts: buildOptions(opts)}
	if rv, ok := channel.(RemoteVerify); ok {
		v.remote = rv.Client
	}
	return v
}

// Verify checks code for the voter id and, on success, makes sure a durable
// voter record exists. The pending entry is consumed on success and on
// expiry; a wrong code leaves it in place for another try.
func (v *Verifier) Verify(ctx context.Context, rawVoterID, code string) error {
	voterID, err := identity.ValidateVoterID(rawVoterID)
	if err != nil {
		return err
	}

	entry, ok := v.ledger.Get(voterID)
	if !ok {
		return apperr.ErrNoOTP
	}

	if entry.Mode == ModeRemote && v.remote != nil {
		approved, err := v.remote.Check(ctx, entry.Phone, code)
		if err != nil {
			slog.Warn("remote verification check failed", "voter_id", voterID, "error", err)
			return apperr.VerifyError(err)
		}
		if !approved {
			return apperr.ErrInvalidCode
		}
	} else {
		if v.opts.now().After(entry.ExpiresAt) {
			v.ledger.CompareAndDelete(voterID, entry)
			return apperr.ErrExpired
		}
		if entry.Code == "" || subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
			return apperr.ErrInvalidCode
		}
	}

	if err := v.promote(ctx, voterID, entry.Phone); err != nil {
		return apperr.DB(err)
	}

	v.ledger.CompareAndDelete(voterID, entry)
	slog.Info("otp verified", "voter_id", voterID, "mode", entry.Mode)
	return nil
}

func (v *Verifier) promote(ctx context.Context, voterID, phone string) error {
	_, found, err := v.voters.FindVoter(ctx, voterID)
	if err != nil {
		return fmt.Errorf("find voter: %w", err)
	}
	if found {
		return nil
	}

	created, err := v.voters.InsertVoter(ctx, models.Voter{
		ID:        auth.GenerateID(),
		VoterID:   voterID,
		Phone:     phone,
		CreatedAt: v.opts.now(),
	})
	if err != nil {
		return fmt.Errorf("insert voter: %w", err)
	}
	if created {
		slog.Info("voter registered", "voter_id", voterID)
	}
	return nil
}
