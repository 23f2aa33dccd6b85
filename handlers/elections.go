// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
)

// ElectionHandler serves the public election listing used by the voting page
type ElectionHandler struct {
	store *store.Store
}

func NewElectionHandler(db *sql.DB) *ElectionHandler {
	return &ElectionHandler{store: store.New(db)}
}

// List handles GET /elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	elections, err := h.store.ListElections(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, elections)
}

// Get handles GET /elections/{id}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := loadElection(r.Context(), h.store, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}

// loadElection returns the election with its participants and tallies
func loadElection(ctx context.Context, s *store.Store, id string) (models.ElectionWithParticipants, error) {
	election, err := s.GetElection(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.ElectionWithParticipants{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.ElectionWithParticipants{}, apperr.DB(err)
	}

	participants, err := s.ListParticipants(ctx, id)
	if err != nil {
		return models.ElectionWithParticipants{}, apperr.DB(err)
	}

	return models.ElectionWithParticipants{
		Election:     election,
		Participants: participants,
	}, nil
}
