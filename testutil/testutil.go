// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
)

// SetupTestDB creates a fresh SQLite database with the full schema.
// The database lives in t.TempDir() and is closed on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// One connection serializes writers so concurrent tests never see SQLITE_BUSY
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3000,
		DatabaseURL:    "test.db",
		DatabaseType:   db.TypeSQLite,
		AdminUser:      "admin",
		AdminPass:      "test-pass",
		SessionSecret:  "test-session-secret",
		AllowedOrigins: []string{"http://localhost:5173"},
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// CreateTestElection creates an election with the named participants and
// returns the election ID and participant IDs in the same order
func CreateTestElection(t *testing.T, conn *sql.DB, name string, participants ...string) (string, []string) {
	t.Helper()

	electionID := auth.GenerateID()
	_, err := conn.Exec(`
		INSERT INTO elections (id, name, created_at) VALUES ($1, $2, $3)
	`, electionID, name, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		id := auth.GenerateID()
		_, err := conn.Exec(`
			INSERT INTO participants (id, election_id, name) VALUES ($1, $2, $3)
		`, id, electionID, p)
		if err != nil {
			t.Fatalf("Failed to create test participant: %v", err)
		}
		ids = append(ids, id)
	}

	return electionID, ids
}

// CreateTestVoter inserts a verified voter record
func CreateTestVoter(t *testing.T, conn *sql.DB, voterID, phone string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO voters (id, voter_id, phone, created_at) VALUES ($1, $2, $3, $4)
	`, auth.GenerateID(), voterID, phone, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
}

// CountRows runs a COUNT(*) query and returns the result
func CountRows(t *testing.T, conn *sql.DB, query string, args ...interface{}) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

// ParticipantVotes returns the stored tally for a participant
func ParticipantVotes(t *testing.T, conn *sql.DB, participantID string) int {
	t.Helper()
	return CountRows(t, conn, `SELECT votes FROM participants WHERE id = $1`, participantID)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorKind checks the "error" field of a JSON error response
func AssertErrorKind(t *testing.T, w *httptest.ResponseRecorder, kind string) {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v. Body: %s", err, w.Body.String())
	}
	if resp.Error != kind {
		t.Errorf("Expected error kind %q, got %q. Body: %s", kind, resp.Error, w.Body.String())
	}
}
