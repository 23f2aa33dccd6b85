// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/votes"
)

type VotingHandler struct {
	ledger *votes.Ledger
}

func NewVotingHandler(ledger *votes.Ledger) *VotingHandler {
	return &VotingHandler{ledger: ledger}
}

// CastVote handles POST /vote
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.BindJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.ledger.Cast(r.Context(), req.ElectionID, req.ParticipantID, req.VoterID); err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// VoteStatus handles GET /voter/{voterId}/election/{electionId}/status
func (h *VotingHandler) VoteStatus(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("voterId")
	electionID := r.PathValue("electionId")

	voted, err := h.ledger.HasVoted(r.Context(), electionID, voterID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteStatusResponse{HasVoted: voted})
}
