// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func setupLedger(t *testing.T) (*Ledger, string, []string, func() int) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	electionID, participants := testutil.CreateTestElection(t, conn, "Class Rep", "Alice", "Bob")
	testutil.CreateTestVoter(t, conn, "V12345", "+14155552671")

	countVotes := func() int {
		return testutil.CountRows(t, conn, `SELECT COUNT(*) FROM votes WHERE election_id = $1`, electionID)
	}
	return NewLedger(store.New(conn)), electionID, participants, countVotes
}

func TestCast_RequiresVerifiedVoter(t *testing.T) {
	ledger, electionID, participants, countVotes := setupLedger(t)

	err := ledger.Cast(context.Background(), electionID, participants[0], "V99999")
	assert.ErrorIs(t, err, apperr.ErrVoterNotVerified)
	assert.Equal(t, 0, countVotes())
}

func TestCast_OncePerElection(t *testing.T) {
	ledger, electionID, participants, countVotes := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Cast(ctx, electionID, participants[0], "V12345"))

	// Second attempt is rejected even for a different participant
	err := ledger.Cast(ctx, electionID, participants[1], "V12345")
	assert.ErrorIs(t, err, apperr.ErrAlreadyVoted)
	assert.Equal(t, 1, countVotes())
}

func TestCast_NormalizesVoterID(t *testing.T) {
	ledger, electionID, participants, _ := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Cast(ctx, electionID, participants[0], "v12345"))

	voted, err := ledger.HasVoted(ctx, electionID, "V12345")
	require.NoError(t, err)
	assert.True(t, voted)
}

func TestCast_PaddedVoterIDNotTrimmed(t *testing.T) {
	ledger, electionID, participants, _ := setupLedger(t)
	ctx := context.Background()

	for _, raw := range []string{" V12345", "V12345\n", "\tv12345 "} {
		err := ledger.Cast(ctx, electionID, participants[0], raw)
		assert.ErrorIs(t, err, apperr.ErrVoterNotVerified, "raw %q", raw)
	}

	voted, err := ledger.HasVoted(ctx, electionID, "V12345")
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestCast_InvalidParticipant(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	electionID, _ := testutil.CreateTestElection(t, conn, "First", "Alice")
	_, otherParticipants := testutil.CreateTestElection(t, conn, "Second", "Carol")
	testutil.CreateTestVoter(t, conn, "V12345", "+14155552671")
	ledger := NewLedger(store.New(conn))

	tests := []struct {
		name          string
		participantID string
	}{
		{"unknown participant", "does-not-exist"},
		{"participant from another election", otherParticipants[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ledger.Cast(context.Background(), electionID, tt.participantID, "V12345")
			assert.ErrorIs(t, err, apperr.ErrInvalidParticipant)
		})
	}

	// Rejected casts leave no vote behind, so the voter can still vote
	assert.Equal(t, 0, testutil.CountRows(t, conn, `SELECT COUNT(*) FROM votes`))
	assert.Equal(t, 0, testutil.ParticipantVotes(t, conn, otherParticipants[0]))
}

func TestCast_SeparateElections(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	first, firstParts := testutil.CreateTestElection(t, conn, "First", "Alice")
	second, secondParts := testutil.CreateTestElection(t, conn, "Second", "Bob")
	testutil.CreateTestVoter(t, conn, "V12345", "+14155552671")
	ledger := NewLedger(store.New(conn))
	ctx := context.Background()

	require.NoError(t, ledger.Cast(ctx, first, firstParts[0], "V12345"))
	require.NoError(t, ledger.Cast(ctx, second, secondParts[0], "V12345"))

	assert.Equal(t, 1, testutil.ParticipantVotes(t, conn, firstParts[0]))
	assert.Equal(t, 1, testutil.ParticipantVotes(t, conn, secondParts[0]))
}

func TestCast_ConcurrentDoubleVote(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	electionID, participants := testutil.CreateTestElection(t, conn, "Race", "Alice", "Bob")
	testutil.CreateTestVoter(t, conn, "V12345", "+14155552671")
	ledger := NewLedger(store.New(conn))

	const numRequests = 10
	var wg sync.WaitGroup
	var successCount, rejectedCount atomic.Int32

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := ledger.Cast(context.Background(), electionID, participants[i%2], "V12345")
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, apperr.ErrAlreadyVoted):
				rejectedCount.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load())
	assert.Equal(t, int32(numRequests-1), rejectedCount.Load())
	assert.Equal(t, 1, testutil.CountRows(t, conn, `SELECT COUNT(*) FROM votes`))

	total := testutil.ParticipantVotes(t, conn, participants[0]) + testutil.ParticipantVotes(t, conn, participants[1])
	assert.Equal(t, 1, total, "counters must match vote rows")
}

func TestHasVoted(t *testing.T) {
	ledger, electionID, participants, _ := setupLedger(t)
	ctx := context.Background()

	voted, err := ledger.HasVoted(ctx, electionID, "V12345")
	require.NoError(t, err)
	assert.False(t, voted)

	require.NoError(t, ledger.Cast(ctx, electionID, participants[1], "V12345"))

	voted, err = ledger.HasVoted(ctx, electionID, "V12345")
	require.NoError(t, err)
	assert.True(t, voted)

	voted, err = ledger.HasVoted(ctx, "other-election", "V12345")
	require.NoError(t, err)
	assert.False(t, voted)
}

type failingStore struct {
	recordErr error
}

func (f failingStore) FindVoter(context.Context, string) (models.Voter, bool, error) {
	return models.Voter{VoterID: "V12345"}, true, nil
}

func (f failingStore) HasVoted(context.Context, string, string) (bool, error) {
	return false, nil
}

func (f failingStore) RecordVote(context.Context, models.Vote) error {
	return f.recordErr
}

func TestCast_StoreErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
	}{
		{"duplicate from constraint", store.ErrDuplicateVote, apperr.KindAlreadyVoted},
		{"unknown participant", store.ErrUnknownParticipant, apperr.KindInvalidParticipant},
		{"database failure", errors.New("disk I/O error"), apperr.KindDBError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLedger(failingStore{recordErr: tt.err}).Cast(context.Background(), "e1", "p1", "V12345")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}
