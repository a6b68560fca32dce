// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/votehub/auth"
	"github.com/danielhkuo/votehub/cliparse"
	"github.com/danielhkuo/votehub/db"
)

// TestAdminID is the admin identity used by GetAdminHeaders
const TestAdminID = "test-admin"

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), cliparse.DatabaseSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: cliparse.DatabaseSQLite,
		AdminKeySalt: "test-admin-salt",
		VoterIPSalt:  "test-ip-salt",
	}
}

// GetAdminHeaders returns valid admin credentials for cfg
func GetAdminHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{
		"X-Admin-ID":  TestAdminID,
		"X-Admin-Key": auth.GenerateAdminKey(TestAdminID, cfg.AdminKeySalt),
	}
}

// GetVoterHeaders returns headers identifying voterID
func GetVoterHeaders(voterID string) map[string]string {
	return map[string]string{"X-Voter-ID": voterID}
}

// NewVoterID returns a fresh voter identity
func NewVoterID() string {
	return uuid.NewString()
}

// CreateTestPoll inserts a poll and returns its ID.
// A nil endsAt means one week from now.
func CreateTestPoll(t *testing.T, conn *sql.DB, kind, status string, endsAt *time.Time) string {
	t.Helper()

	if endsAt == nil {
		e := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Microsecond)
		endsAt = &e
	}

	pollID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO poll (id, kind, title, description, category, status, ends_at, created_at, created_by)
		VALUES ($1, $2, 'Test Poll', 'A test poll', 'Testing', $3, $4, $5, $6)
	`, pollID, kind, status, endsAt, time.Now().UTC(), TestAdminID)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID
}

// AddTestOption adds an option with a starting vote count and returns its ID.
// Options are ordered by insertion.
func AddTestOption(t *testing.T, conn *sql.DB, pollID, label string, votes int64) string {
	t.Helper()

	var position int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM option WHERE poll_id = $1`, pollID).Scan(&position); err != nil {
		t.Fatalf("Failed to count options: %v", err)
	}

	optionID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO option (id, poll_id, position, label, votes)
		VALUES ($1, $2, $3, $4, $5)
	`, optionID, pollID, position, label, votes)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// GetOptionVotes reads an option's stored vote count
func GetOptionVotes(t *testing.T, conn *sql.DB, optionID string) int64 {
	t.Helper()

	var votes int64
	if err := conn.QueryRow(`SELECT COALESCE(votes, 0) FROM option WHERE id = $1`, optionID).Scan(&votes); err != nil {
		t.Fatalf("Failed to query option votes: %v", err)
	}
	return votes
}

// CountVotes counts vote rows for a poll
func CountVotes(t *testing.T, conn *sql.DB, pollID string) int {
	t.Helper()

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE poll_id = $1`, pollID).Scan(&count); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return count
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

// MergeHeaders combines header maps; later maps win
func MergeHeaders(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
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
