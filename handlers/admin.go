// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
)

type AdminHandler struct {
	store    *store.Store
	cfg      cliparse.Config
	creds    *auth.Credentials
	sessions *auth.Sessions
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config, creds *auth.Credentials, sessions *auth.Sessions) *AdminHandler {
	return &AdminHandler{
		store:    store.New(db),
		cfg:      cfg,
		creds:    creds,
		sessions: sessions,
	}
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := middleware.BindJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.creds.Check(req.Username, req.Password); err != nil {
		slog.Warn("admin login rejected", "client_ip", middleware.GetClientIP(r))
		writeError(w, r, apperr.ErrInvalidCredentials)
		return
	}

	token, expiresAt, err := h.sessions.Issue(h.creds.Username())
	if err != nil {
		writeError(w, r, apperr.SessionError(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("admin logged in", "username", h.creds.Username())

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// CheckSession handles GET /admin/check-session
func (h *AdminHandler) CheckSession(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.AdminSession(h.sessions, r)
	if !ok {
		middleware.JSONResponse(w, http.StatusUnauthorized, models.SessionResponse{OK: false})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{OK: true, Username: username})
}

// Logout handles POST /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// CreateElection handles POST /admin/elections
func (h *AdminHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.BindJSON(r, &req); err != nil {
		writeError(w, r, &apperr.Error{Kind: apperr.KindInvalidPayload, Message: invalidPayloadMessage(err), Err: err})
		return
	}

	name := strings.TrimSpace(req.Name)
	participants := make([]string, 0, len(req.Participants))
	for _, p := range req.Participants {
		p = strings.TrimSpace(p)
		if p == "" {
			writeError(w, r, &apperr.Error{Kind: apperr.KindInvalidPayload, Message: "participant names must not be blank"})
			return
		}
		participants = append(participants, p)
	}
	if name == "" {
		writeError(w, r, &apperr.Error{Kind: apperr.KindInvalidPayload, Message: "name is required"})
		return
	}

	electionID, err := h.store.CreateElection(r.Context(), name, participants)
	if err != nil {
		writeError(w, r, apperr.DB(err))
		return
	}

	admin, _ := middleware.AdminFromContext(r.Context())
	slog.Info("election created", "election_id", electionID, "participants", len(participants), "admin", admin)

	middleware.JSONResponse(w, http.StatusOK, models.CreateElectionResponse{
		OK:         true,
		ElectionID: electionID,
	})
}

func invalidPayloadMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// ListElections handles GET /admin/elections
func (h *AdminHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.ListElectionSummaries(r.Context())
	if err != nil {
		writeError(w, r, apperr.DB(err))
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// Results handles GET /admin/elections/{id}/results
func (h *AdminHandler) Results(w http.ResponseWriter, r *http.Request) {
	result, err := loadElection(r.Context(), h.store, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}

// ElectionDetails handles GET /admin/election-details/{id}
func (h *AdminHandler) ElectionDetails(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	election, err := h.store.GetElection(r.Context(), electionID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, apperr.ErrNotFound)
		return
	}
	if err != nil {
		writeError(w, r, apperr.DB(err))
		return
	}

	details, err := h.store.ListVoteDetails(r.Context(), electionID)
	if err != nil {
		writeError(w, r, apperr.DB(err))
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionDetails{
		Election: election,
		Votes:    details,
	})
}
