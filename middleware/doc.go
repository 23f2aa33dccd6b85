// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, client_ip) and completion (status,
duration_ms).

# CORS

CORS wraps the whole mux with github.com/rs/cors:

	handler := middleware.CORS(cfg.AllowedOrigins)(mux)

Credentials are allowed so the admin session cookie survives cross-origin
requests from the voting frontend. Origins must be listed explicitly; "*" is
dropped, and an empty list leaves the mux same-origin only.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, apperr.KindNotFound, "election not found")
	middleware.AppErrorResponse(w, http.StatusBadRequest, apperr.ErrInvalidVoterID)

Parse and validate request bodies. Struct tags are checked with
go-playground/validator; a failing tag yields apperr kind "missing" and
malformed JSON yields "invalid_payload":

	var req models.SendOTPRequest
	if err := middleware.BindJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

# Admin Sessions

RequireAdmin checks the admin_session cookie against auth.Sessions and
responds 401 {"error":"admin_required"} when it is absent or invalid:

	mux.HandleFunc("GET /admin/elections",
		middleware.WithLogging(middleware.RequireAdmin(sessions, h.ListElections)))

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used in request logs.
*/
package middleware
