// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"mafia-night/engine"
	"mafia-night/models"
	"mafia-night/testutil"
)

// rolesByUser reads the shuffled role assignment back out of the database
func rolesByUser(t *testing.T, conn *sql.DB, gameID string) (mafia []string, citizens []string) {
	t.Helper()
	rows, err := conn.Query("SELECT user_id, role FROM player WHERE game_id = $1", gameID)
	if err != nil {
		t.Fatalf("Failed to list players: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID, role string
		if err := rows.Scan(&userID, &role); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if role == models.RoleMafia {
			mafia = append(mafia, userID)
		} else {
			citizens = append(citizens, userID)
		}
	}
	return mafia, citizens
}

func getResults(t *testing.T, eng *engine.Engine, sessionID string) models.SessionResultsResponse {
	t.Helper()
	h := NewResultsHandler(eng)
	req := testutil.MakeRequest("GET", "/sessions/"+sessionID+"/results", nil, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	h.GetResults(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.SessionResultsResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func TestGetResultsEndpoint_DayVotesArePublic(t *testing.T) {
	eng, _, conn := setupEngine(t)
	ctx := context.Background()

	game, night, err := eng.StartGame(ctx, "room-1", []string{"p1", "p2", "p3", "p4"}, 1, 60)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	mafia, citizens := rolesByUser(t, conn, game.ID)

	// Resolve the night round: mafia kills a citizen, the rest abstain
	if _, err := eng.CastVote(ctx, night.ID, mafia[0], citizens[0]); err != nil {
		t.Fatalf("Night vote failed: %v", err)
	}
	if err := eng.CompleteSession(ctx, night.ID); err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}

	day, err := eng.GetCurrentActiveSession(ctx, game.ID)
	if err != nil {
		t.Fatalf("Expected day session: %v", err)
	}
	if _, err := eng.CastVote(ctx, day.ID, citizens[1], mafia[0]); err != nil {
		t.Fatalf("Day vote failed: %v", err)
	}
	if _, err := eng.CastVote(ctx, day.ID, citizens[2], mafia[0]); err != nil {
		t.Fatalf("Day vote failed: %v", err)
	}

	resp := getResults(t, eng, day.ID)

	if len(resp.Votes) != 2 {
		t.Errorf("Day results should list individual votes, got %d", len(resp.Votes))
	}
	if len(resp.Results) != 1 || resp.Results[0].TargetUserID != mafia[0] || resp.Results[0].Count != 2 {
		t.Errorf("Unexpected day tallies: %+v", resp.Results)
	}
}

func TestGetResultsEndpoint_NightVotesAreSecret(t *testing.T) {
	eng, _, conn := setupEngine(t)
	ctx := context.Background()

	game, night, err := eng.StartGame(ctx, "room-1", []string{"p1", "p2", "p3", "p4"}, 1, 60)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	mafia, citizens := rolesByUser(t, conn, game.ID)

	// Mafia targets a citizen; another citizen casts a decoy
	if _, err := eng.CastVote(ctx, night.ID, mafia[0], citizens[0]); err != nil {
		t.Fatalf("Night vote failed: %v", err)
	}
	if _, err := eng.CastVote(ctx, night.ID, citizens[1], mafia[0]); err != nil {
		t.Fatalf("Decoy vote failed: %v", err)
	}

	resp := getResults(t, eng, night.ID)

	if resp.Votes != nil {
		t.Errorf("Night results must not list individual votes, got %+v", resp.Votes)
	}
	counts := map[string]int{}
	for _, tally := range resp.Results {
		counts[tally.TargetUserID] = tally.Count
	}
	if counts[citizens[0]] != 1 {
		t.Errorf("Expected 1 counted vote on the mafia target, got %d", counts[citizens[0]])
	}
	if counts[mafia[0]] != 0 {
		t.Errorf("Decoy ballots must not count, got %d", counts[mafia[0]])
	}
}

func TestGetResultsEndpoint_NotFound(t *testing.T) {
	eng, _, _ := setupEngine(t)
	h := NewResultsHandler(eng)

	req := testutil.MakeRequest("GET", "/sessions/nope/results", nil, nil)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()

	h.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}
