// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store persists elections, participants, voters, and votes.
//
// Queries use $N placeholders, which both lib/pq and modernc.org/sqlite
// accept, so one Store serves either database type.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateVote      = errors.New("vote already recorded for this voter and election")
	ErrUnknownParticipant = errors.New("participant does not belong to election")
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// isUniqueViolation reports whether err is a unique/primary key conflict
// from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// Voters

func (s *Store) FindVoter(ctx context.Context, voterID string) (models.Voter, bool, error) {
	var v models.Voter
	err := s.db.QueryRowContext(ctx, `
		SELECT id, voter_id, phone, created_at FROM voters WHERE voter_id = $1
	`, voterID).Scan(&v.ID, &v.VoterID, &v.Phone, &v.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Voter{}, false, nil
	}
	if err != nil {
		return models.Voter{}, false, fmt.Errorf("failed to query voter: %w", err)
	}
	return v, true, nil
}

// InsertVoter creates the voter unless the voter id is already registered
func (s *Store) InsertVoter(ctx context.Context, v models.Voter) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO voters (id, voter_id, phone, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (voter_id) DO NOTHING
	`, v.ID, v.VoterID, v.Phone, v.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert voter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n == 1, nil
}

// Votes

func (s *Store) HasVoted(ctx context.Context, electionID, voterID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM votes WHERE election_id = $1 AND voter_id = $2
		)
	`, electionID, voterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return exists, nil
}

// RecordVote inserts the vote row and increments the participant's counter
// in one transaction. It returns ErrDuplicateVote when the unique
// (election_id, voter_id) constraint rejects the insert, and
// ErrUnknownParticipant when the participant is not part of the election;
// in both cases nothing is written.
func (s *Store) RecordVote(ctx context.Context, v models.Vote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO votes (id, election_id, participant_id, voter_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, v.ElectionID, v.ParticipantID, v.VoterID, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVote
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE participants SET votes = votes + 1
		WHERE id = $1 AND election_id = $2
	`, v.ParticipantID, v.ElectionID)
	if err != nil {
		return fmt.Errorf("failed to increment tally: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read tally update: %w", err)
	}
	if n != 1 {
		return ErrUnknownParticipant
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVote
		}
		return fmt.Errorf("failed to commit vote: %w", err)
	}
	return nil
}

func (s *Store) ListVoteDetails(ctx context.Context, electionID string) ([]models.VoteDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.voter_id, v.created_at, p.name
		FROM votes v
		JOIN participants p ON v.participant_id = p.id
		WHERE v.election_id = $1
		ORDER BY v.created_at DESC
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	details := []models.VoteDetail{}
	for rows.Next() {
		var d models.VoteDetail
		if err := rows.Scan(&d.VoterID, &d.CreatedAt, &d.ParticipantName); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// Elections

// CreateElection inserts the election and its participants atomically
func (s *Store) CreateElection(ctx context.Context, name string, participants []string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	electionID := auth.GenerateID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO elections (id, name, created_at) VALUES ($1, $2, $3)
	`, electionID, name, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert election: %w", err)
	}

	for _, p := range participants {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO participants (id, election_id, name) VALUES ($1, $2, $3)
		`, auth.GenerateID(), electionID, p)
		if err != nil {
			return "", fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit election: %w", err)
	}
	return electionID, nil
}

func (s *Store) ListElections(ctx context.Context) ([]models.Election, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM elections ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		var e models.Election
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, e)
	}
	return elections, rows.Err()
}

func (s *Store) GetElection(ctx context.Context, id string) (models.Election, error) {
	var e models.Election
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM elections WHERE id = $1
	`, id).Scan(&e.ID, &e.Name)

	if err == sql.ErrNoRows {
		return models.Election{}, ErrNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to query election: %w", err)
	}
	return e, nil
}

func (s *Store) ListParticipants(ctx context.Context, electionID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, election_id, name, votes
		FROM participants
		WHERE election_id = $1
		ORDER BY name, id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.ElectionID, &p.Name, &p.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// ListElectionSummaries returns every election with its participants' tallies
func (s *Store) ListElectionSummaries(ctx context.Context) ([]models.ElectionSummary, error) {
	elections, err := s.ListElections(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ElectionSummary, 0, len(elections))
	for _, e := range elections {
		parts, err := s.ListParticipants(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.ElectionSummary{
			ID:           e.ID,
			Name:         e.Name,
			Participants: parts,
		})
	}
	return summaries, nil
}
