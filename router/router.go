// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/handlers"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/otp"
	"github.com/danielhkuo/quickly-vote/store"
	"github.com/danielhkuo/quickly-vote/votes"
)

// Services are the long-lived collaborators shared by all handlers
type Services struct {
	Ledger    *otp.MemoryLedger
	Issuer    *otp.Issuer
	Verifier  *otp.Verifier
	Votes     *votes.Ledger
	Creds     *auth.Credentials
	Sessions  *auth.Sessions
	Messenger handlers.Messenger // nil when Twilio is not configured
}

// NewServices builds the OTP flow over channel and the vote ledger over db.
// One ledger instance backs both issuer and verifier.
func NewServices(db *sql.DB, cfg cliparse.Config, channel otp.Channel, messenger handlers.Messenger) (Services, error) {
	creds, err := auth.NewCredentials(cfg.AdminUser, cfg.AdminPass)
	if err != nil {
		return Services{}, fmt.Errorf("failed to set up admin credentials: %w", err)
	}

	st := store.New(db)
	ledger := otp.NewMemoryLedger()

	return Services{
		Ledger:    ledger,
		Issuer:    otp.NewIssuer(ledger, channel),
		Verifier:  otp.NewVerifier(ledger, channel, st),
		Votes:     votes.NewLedger(st),
		Creds:     creds,
		Sessions:  auth.NewSessions(cfg.SessionSecret),
		Messenger: messenger,
	}, nil
}

func NewRouter(db *sql.DB, cfg cliparse.Config, svc Services) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	otpHandler := handlers.NewOTPHandler(svc.Issuer, svc.Verifier)
	votingHandler := handlers.NewVotingHandler(svc.Votes)
	electionHandler := handlers.NewElectionHandler(db)
	adminHandler := handlers.NewAdminHandler(db, cfg, svc.Creds, svc.Sessions)
	messageHandler := handlers.NewMessageHandler(svc.Messenger)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(svc.Sessions, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Voter verification and voting (public)
	mux.HandleFunc("POST /send-otp", middleware.WithLogging(otpHandler.SendOTP))
	mux.HandleFunc("POST /verify-otp", middleware.WithLogging(otpHandler.VerifyOTP))
	mux.HandleFunc("POST /vote", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("GET /voter/{voterId}/election/{electionId}/status", middleware.WithLogging(votingHandler.VoteStatus))

	// Elections (public)
	mux.HandleFunc("GET /elections", middleware.WithLogging(electionHandler.List))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.Get))

	// Admin session
	mux.HandleFunc("POST /admin/login", middleware.WithLogging(adminHandler.Login))
	mux.HandleFunc("GET /admin/check-session", middleware.WithLogging(adminHandler.CheckSession))
	mux.HandleFunc("POST /admin/logout", middleware.WithLogging(adminHandler.Logout))

	// Admin operations (session required)
	mux.HandleFunc("POST /admin/elections", admin(adminHandler.CreateElection))
	mux.HandleFunc("GET /admin/elections", admin(adminHandler.ListElections))
	mux.HandleFunc("GET /admin/elections/{id}/results", admin(adminHandler.Results))
	mux.HandleFunc("GET /admin/election-details/{id}", admin(adminHandler.ElectionDetails))
	mux.HandleFunc("POST /send-whatsapp-template", admin(messageHandler.SendTemplate))

	// Root endpoint: the voting frontend when configured
	if cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))
	} else {
		mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("quickly-vote API v1"))
		})
	}

	return mux
}
