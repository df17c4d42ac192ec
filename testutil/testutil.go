// Copyright (c) 2026 mafia-night contributors.
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

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mafia-night/cliparse"
	"mafia-night/db"
	"mafia-night/models"
)

// SetupTestDB creates a fresh sqlite database with the full schema.
// The file lives in t.TempDir() and is removed with it.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mafia_test.db")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// sqlite allows a single writer
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3525,
		DatabaseURL:   "file::memory:",
		DatabaseType:  "sqlite",
		RoundSeconds:  60,
		SweepInterval: 5 * time.Second,
		TickInterval:  time.Second,
	}
}

// CreateTestGame inserts a game row and returns its ID.
// status should be "in_progress" or "finished".
func CreateTestGame(t *testing.T, conn *sql.DB, roomID, status, phase string, day int) string {
	t.Helper()

	gameID := uuid.NewString()
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO game (id, room_id, status, current_phase, current_day, round_seconds, winner, created_at, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, 60, NULL, $6, $7, NULL)
	`, gameID, roomID, status, phase, day, now, now)
	if err != nil {
		t.Fatalf("Failed to create test game: %v", err)
	}

	return gameID
}

// AddTestPlayer inserts a player row and returns its ID
func AddTestPlayer(t *testing.T, conn *sql.DB, gameID, userID, role string, alive bool) string {
	t.Helper()

	playerID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO player (id, game_id, user_id, role, alive, version)
		VALUES ($1, $2, $3, $4, $5, 1)
	`, playerID, gameID, userID, role, alive)
	if err != nil {
		t.Fatalf("Failed to create test player: %v", err)
	}

	return playerID
}

// CreateTestSession inserts a voting session row and returns its ID.
// status should be "active", "completed", or "expired".
func CreateTestSession(t *testing.T, conn *sql.DB, gameID, phase string, day int, status string, totalVoters int, endsAt time.Time) string {
	t.Helper()

	sessionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO voting_session (id, game_id, phase, day_number, status, started_at, ends_at, total_eligible_voters, votes_received, result_user_id, is_tie, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, NULL, FALSE, 1)
	`, sessionID, gameID, phase, day, status, time.Now().UTC(), endsAt, totalVoters)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return sessionID
}

// InsertTestVote inserts a vote row directly, bypassing the engine
func InsertTestVote(t *testing.T, conn *sql.DB, session *models.VotingSession, voterID, targetUserID string, valid bool) string {
	t.Helper()

	voteID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO vote (id, session_id, game_id, phase, day_number, voter_id, target_user_id, is_valid, voted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, voteID, session.ID, session.GameID, session.Phase, session.DayNumber, voterID, targetUserID, valid, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
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
