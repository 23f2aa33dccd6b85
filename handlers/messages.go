// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

// Messenger sends WhatsApp content templates. *notify.TwilioMessenger
// implements it.
type Messenger interface {
	SendTemplate(ctx context.Context, to, contentSID, variables string) (string, error)
}

type MessageHandler struct {
	messenger Messenger
}

// NewMessageHandler returns a handler that sends through m. A nil m
// answers every request with twilio_not_configured.
func NewMessageHandler(m Messenger) *MessageHandler {
	return &MessageHandler{messenger: m}
}

// SendTemplate handles POST /send-whatsapp-template
func (h *MessageHandler) SendTemplate(w http.ResponseWriter, r *http.Request) {
	if h.messenger == nil {
		writeError(w, r, apperr.ErrTwilioNotConfigured)
		return
	}

	var req models.SendTemplateRequest
	if err := middleware.BindJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	variables, err := contentVariables(req.ContentVariables)
	if err != nil {
		writeError(w, r, &apperr.Error{Kind: apperr.KindInvalidPayload, Message: "contentVariables must be a JSON object or string", Err: err})
		return
	}

	sid, err := h.messenger.SendTemplate(r.Context(), req.To, req.ContentSID, variables)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindSendFailed {
			slog.Warn("whatsapp template send failed", "to", req.To, "error", err)
		}
		writeError(w, r, err)
		return
	}

	slog.Info("whatsapp template sent", "to", req.To, "sid", sid)

	middleware.JSONResponse(w, http.StatusOK, models.SendTemplateResponse{OK: true, SID: sid})
}

// contentVariables accepts either a JSON object or a string holding one
func contentVariables(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	return string(raw), nil
}
