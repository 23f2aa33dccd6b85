// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/testutil"
)

// login performs an admin login and returns the session cookie
func (a *testApp) login(t *testing.T) *http.Cookie {
	t.Helper()
	cfg := testutil.GetTestConfig()

	w := httptest.NewRecorder()
	a.admin.Login(w, testutil.MakeRequest("POST", "/admin/login", models.AdminLoginRequest{
		Username: cfg.AdminUser,
		Password: cfg.AdminPass,
	}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("Login did not set a session cookie")
	return nil
}

func TestAdminLogin(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedKind   string
	}{
		{"wrong password", models.AdminLoginRequest{Username: "admin", Password: "nope"}, http.StatusUnauthorized, apperr.KindInvalidCredentials},
		{"wrong username", models.AdminLoginRequest{Username: "root", Password: "test-pass"}, http.StatusUnauthorized, apperr.KindInvalidCredentials},
		{"missing password", map[string]string{"username": "admin"}, http.StatusBadRequest, apperr.KindMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.admin.Login(w, testutil.MakeRequest("POST", "/admin/login", tt.requestBody, nil))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			testutil.AssertErrorKind(t, w, tt.expectedKind)
			if len(w.Result().Cookies()) != 0 {
				t.Error("Failed login must not set a cookie")
			}
		})
	}

	cookie := app.login(t)
	if !cookie.HttpOnly {
		t.Error("Session cookie must be HttpOnly")
	}
}

func TestAdminCheckSessionAndLogout(t *testing.T) {
	app := newTestApp(t)

	// No session
	w := httptest.NewRecorder()
	app.admin.CheckSession(w, httptest.NewRequest("GET", "/admin/check-session", nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	var resp models.SessionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.OK {
		t.Error("Expected ok=false without a session")
	}

	cookie := app.login(t)

	req := httptest.NewRequest("GET", "/admin/check-session", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	app.admin.CheckSession(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	resp = models.SessionResponse{}
	testutil.AssertJSON(t, w, &resp)
	if !resp.OK || resp.Username != "admin" {
		t.Errorf("Unexpected session response: %+v", resp)
	}

	// Logout expires the cookie
	w = httptest.NewRecorder()
	app.admin.Logout(w, httptest.NewRequest("POST", "/admin/logout", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Expected logout to clear the session cookie")
	}
}

func TestAdminCreateElection(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{"valid", models.CreateElectionRequest{Name: " Board ", Participants: []string{"Alice", " Bob "}}, http.StatusOK},
		{"no participants", models.CreateElectionRequest{Name: "Board", Participants: []string{}}, http.StatusBadRequest},
		{"blank name", models.CreateElectionRequest{Name: "   ", Participants: []string{"Alice"}}, http.StatusBadRequest},
		{"blank participant", models.CreateElectionRequest{Name: "Board", Participants: []string{"Alice", "  "}}, http.StatusBadRequest},
		{"participants not a list", map[string]string{"name": "Board", "participants": "Alice"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.admin.CreateElection(w, testutil.MakeRequest("POST", "/admin/elections", tt.requestBody, nil))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				testutil.AssertErrorKind(t, w, apperr.KindInvalidPayload)
				return
			}

			var resp models.CreateElectionResponse
			testutil.AssertJSON(t, w, &resp)
			if !resp.OK || resp.ElectionID == "" {
				t.Fatalf("Unexpected response: %+v", resp)
			}

			var name string
			if err := app.db.QueryRow(`SELECT name FROM elections WHERE id = $1`, resp.ElectionID).Scan(&name); err != nil {
				t.Fatalf("Failed to load election: %v", err)
			}
			if name != "Board" {
				t.Errorf("Expected trimmed name 'Board', got %q", name)
			}
			if n := testutil.CountRows(t, app.db, `SELECT COUNT(*) FROM participants WHERE election_id = $1 AND name = 'Bob'`, resp.ElectionID); n != 1 {
				t.Errorf("Expected trimmed participant 'Bob', got %d rows", n)
			}
		})
	}
}

func TestAdminCreateElectionLogsActingAdmin(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	req := testutil.MakeRequest("POST", "/admin/elections", models.CreateElectionRequest{Name: "Board", Participants: []string{"Alice"}}, nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()

	middleware.RequireAdmin(app.sessions, app.admin.CreateElection)(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	if !strings.Contains(buf.String(), "admin="+testutil.GetTestConfig().AdminUser) {
		t.Errorf("Expected acting admin in log, got %q", buf.String())
	}
}

func TestAdminResultsAndDetails(t *testing.T) {
	app := newTestApp(t)
	electionID, participants := testutil.CreateTestElection(t, app.db, "Board", "Alice", "Bob")
	testutil.CreateTestVoter(t, app.db, "V12345", "+14155552671")

	w := httptest.NewRecorder()
	app.voting.CastVote(w, testutil.MakeRequest("POST", "/vote", models.CastVoteRequest{
		ElectionID: electionID, ParticipantID: participants[1], VoterID: "V12345",
	}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Results
	req := httptest.NewRequest("GET", "/admin/elections/"+electionID+"/results", nil)
	req.SetPathValue("id", electionID)
	w = httptest.NewRecorder()
	app.admin.Results(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var results models.ElectionWithParticipants
	testutil.AssertJSON(t, w, &results)
	if results.Election.Name != "Board" || len(results.Participants) != 2 {
		t.Fatalf("Unexpected results: %+v", results)
	}
	for _, p := range results.Participants {
		want := 0
		if p.Name == "Bob" {
			want = 1
		}
		if p.Votes != want {
			t.Errorf("Expected %s to have %d votes, got %d", p.Name, want, p.Votes)
		}
	}

	// Details
	req = httptest.NewRequest("GET", "/admin/election-details/"+electionID, nil)
	req.SetPathValue("id", electionID)
	w = httptest.NewRecorder()
	app.admin.ElectionDetails(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var details models.ElectionDetails
	testutil.AssertJSON(t, w, &details)
	if len(details.Votes) != 1 || details.Votes[0].VoterID != "V12345" || details.Votes[0].ParticipantName != "Bob" {
		t.Errorf("Unexpected details: %+v", details)
	}

	// Summaries
	w = httptest.NewRecorder()
	app.admin.ListElections(w, httptest.NewRequest("GET", "/admin/elections", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var summaries []models.ElectionSummary
	testutil.AssertJSON(t, w, &summaries)
	if len(summaries) != 1 || len(summaries[0].Participants) != 2 {
		t.Errorf("Unexpected summaries: %+v", summaries)
	}
}

func TestAdminNotFound(t *testing.T) {
	app := newTestApp(t)

	handlers := map[string]http.HandlerFunc{
		"results": app.admin.Results,
		"details": app.admin.ElectionDetails,
	}

	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/x/missing", nil)
			req.SetPathValue("id", "missing")
			w := httptest.NewRecorder()

			h(w, req)

			testutil.AssertStatus(t, w, http.StatusNotFound)
			testutil.AssertErrorKind(t, w, apperr.KindNotFound)
		})
	}
}
