// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/otp"
)

type OTPHandler struct {
	issuer   *otp.Issuer
	verifier *otp.Verifier
}

func NewOTPHandler(issuer *otp.Issuer, verifier *otp.Verifier) *OTPHandler {
	return &OTPHandler{issuer: issuer, verifier: verifier}
}

// SendOTP handles POST /send-otp
func (h *OTPHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.SendOTPRequest
	if err := middleware.BindJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	receipt, err := h.issuer.Issue(r.Context(), req.VoterID, req.Phone)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("otp requested", "voter_id", receipt.VoterID, "via", receipt.Via)

	middleware.JSONResponse(w, http.StatusOK, models.SendOTPResponse{
		OK:  true,
		TTL: int(receipt.TTL.Seconds()),
		Via: receipt.Via,
	})
}

// VerifyOTP handles POST /verify-otp
func (h *OTPHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := middleware.BindJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.verifier.Verify(r.Context(), req.VoterID, req.Code); err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}
