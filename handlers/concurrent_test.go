// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"mafia-night/models"
	"mafia-night/testutil"
)

// TestConcurrentSameVoter verifies that simultaneous ballots from the same
// voter yield exactly one vote row: one succeeds, the rest get a conflict
func TestConcurrentSameVoter(t *testing.T) {
	eng, _, conn := setupEngine(t)
	h := NewVotingHandler(eng)

	_, sess, err := eng.StartGame(context.Background(), "room-1", []string{"p1", "p2", "p3", "p4", "p5"}, 1, 60)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	attempts := 8
	var created, conflicted atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			// Same voter, varying targets
			target := "p" + strconv.Itoa(2+n%3)
			req := testutil.MakeRequest("POST", "/sessions/"+sess.ID+"/votes", models.CastVoteRequest{
				VoterID:      "p1",
				TargetUserID: target,
			}, nil)
			req.SetPathValue("id", sess.ID)
			w := httptest.NewRecorder()

			h.CastVote(w, req)

			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicted.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted ballot, got %d", created.Load())
	}
	if int(conflicted.Load()) != attempts-1 {
		t.Errorf("Expected %d conflicts, got %d", attempts-1, conflicted.Load())
	}

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM vote WHERE session_id = $1 AND voter_id = 'p1'", sess.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 vote row for p1, got %d", count)
	}
}

// TestConcurrentDistinctVoters verifies that a full round of simultaneous
// ballots all lands, the counter matches, and the round resolves exactly once
func TestConcurrentDistinctVoters(t *testing.T) {
	eng, _, conn := setupEngine(t)
	h := NewVotingHandler(eng)

	players := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	game, sess, err := eng.StartGame(context.Background(), "room-1", players, 1, 60)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	var success atomic.Int32
	var wg sync.WaitGroup

	for _, voter := range players {
		wg.Add(1)
		go func(voter string) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/sessions/"+sess.ID+"/votes", models.CastVoteRequest{
				VoterID:      voter,
				TargetUserID: "p1",
			}, nil)
			req.SetPathValue("id", sess.ID)
			w := httptest.NewRecorder()

			h.CastVote(w, req)

			if w.Code == http.StatusCreated {
				success.Add(1)
			}
		}(voter)
	}

	wg.Wait()

	if int(success.Load()) != len(players) {
		t.Errorf("Expected %d accepted ballots, got %d", len(players), success.Load())
	}

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM vote WHERE session_id = $1", sess.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if count != len(players) {
		t.Errorf("Expected %d vote rows, got %d", len(players), count)
	}

	// The last ballot completed the round
	done, err := eng.Results(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if done.Session.Status != models.SessionCompleted {
		t.Errorf("Expected completed session, got %s", done.Session.Status)
	}
	if done.Session.VotesReceived != len(players) {
		t.Errorf("Expected %d votes received, got %d", len(players), done.Session.VotesReceived)
	}

	// Exactly one elimination happened
	var dead int
	if err := conn.QueryRow("SELECT COUNT(*) FROM player WHERE game_id = $1 AND alive = FALSE", game.ID).Scan(&dead); err != nil {
		t.Fatalf("Failed to count dead players: %v", err)
	}
	if dead != 1 {
		t.Errorf("Expected exactly 1 elimination, got %d", dead)
	}
}
