// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package votes enforces one vote per verified voter per election.
package votes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/identity"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
)

// Store is the persistence the ledger needs. *store.Store implements it.
type Store interface {
	FindVoter(ctx context.Context, voterID string) (models.Voter, bool, error)
	HasVoted(ctx context.Context, electionID, voterID string) (bool, error)
	// RecordVote writes the vote and bumps the tally atomically, returning
	// store.ErrDuplicateVote or store.ErrUnknownParticipant on conflict.
	RecordVote(ctx context.Context, v models.Vote) error
}

type Ledger struct {
	store Store
	now   func() time.Time
}

func NewLedger(s Store) *Ledger {
	return &Ledger{store: s, now: time.Now}
}

// Cast records one vote. Checks run in order: the voter must have a durable
// record (voter_not_verified), then must not have voted in this election
// (already_voted). The storage unique constraint backs the second check
// when two casts race.
func (l *Ledger) Cast(ctx context.Context, electionID, participantID, rawVoterID string) error {
	voterID := identity.NormalizeVoterID(rawVoterID)

	_, found, err := l.store.FindVoter(ctx, voterID)
	if err != nil {
		return apperr.DB(err)
	}
	if !found {
		return apperr.ErrVoterNotVerified
	}

	voted, err := l.store.HasVoted(ctx, electionID, voterID)
	if err != nil {
		return apperr.DB(err)
	}
	if voted {
		return apperr.ErrAlreadyVoted
	}

	err = l.store.RecordVote(ctx, models.Vote{
		ID:            auth.GenerateID(),
		ElectionID:    electionID,
		ParticipantID: participantID,
		VoterID:       voterID,
		CreatedAt:     l.now(),
	})
	switch {
	case errors.Is(err, store.ErrDuplicateVote):
		slog.Warn("concurrent double vote rejected by constraint",
			"election_id", electionID,
			"voter_id", voterID,
		)
		return apperr.ErrAlreadyVoted
	case errors.Is(err, store.ErrUnknownParticipant):
		return apperr.ErrInvalidParticipant
	case err != nil:
		return apperr.DB(err)
	}

	slog.Info("vote cast", "election_id", electionID, "participant_id", participantID, "voter_id", voterID)
	return nil
}

// HasVoted reports whether the voter has a vote row for the election
func (l *Ledger) HasVoted(ctx context.Context, electionID, rawVoterID string) (bool, error) {
	voted, err := l.store.HasVoted(ctx, electionID, identity.NormalizeVoterID(rawVoterID))
	if err != nil {
		return false, apperr.DB(err)
	}
	return voted, nil
}
