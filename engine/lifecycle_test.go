// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"testing"

	"mafia-night/models"
	"mafia-night/testutil"
)

func TestStartGame_Validation(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	cases := []struct {
		name         string
		roomID       string
		players      []string
		mafiaCount   int
		roundSeconds int
	}{
		{"empty room", "", []string{"a", "b", "c"}, 1, 60},
		{"too few players", "room", []string{"a", "b"}, 1, 60},
		{"zero mafia", "room", []string{"a", "b", "c"}, 0, 60},
		{"all mafia", "room", []string{"a", "b", "c"}, 3, 60},
		{"more mafia than players", "room", []string{"a", "b", "c"}, 5, 60},
		{"duplicate player", "room", []string{"a", "b", "a"}, 1, 60},
		{"blank player id", "room", []string{"a", "b", ""}, 1, 60},
		{"zero round seconds", "room", []string{"a", "b", "c"}, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := eng.StartGame(ctx, tc.roomID, tc.players, tc.mafiaCount, tc.roundSeconds)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestStartGame_AssignsRolesAndOpensNight(t *testing.T) {
	eng, _, conn := newTestEngine(t)
	ctx := context.Background()

	players := []string{"p1", "p2", "p3", "p4", "p5"}
	game, sess, err := eng.StartGame(ctx, "room-1", players, 2, 60)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	if game.Status != models.GameInProgress {
		t.Errorf("Expected in_progress, got %s", game.Status)
	}
	if game.CurrentPhase != models.PhaseNightVote || game.CurrentDay != 1 {
		t.Errorf("Expected night_vote day 1, got %s day %d", game.CurrentPhase, game.CurrentDay)
	}

	var mafia, citizens int
	if err := conn.QueryRow("SELECT COUNT(*) FROM player WHERE game_id = $1 AND role = 'mafia'", game.ID).Scan(&mafia); err != nil {
		t.Fatalf("Failed to count mafia: %v", err)
	}
	if err := conn.QueryRow("SELECT COUNT(*) FROM player WHERE game_id = $1 AND role = 'citizen'", game.ID).Scan(&citizens); err != nil {
		t.Fatalf("Failed to count citizens: %v", err)
	}
	if mafia != 2 || citizens != 3 {
		t.Errorf("Expected 2 mafia / 3 citizens, got %d / %d", mafia, citizens)
	}

	if sess.Phase != models.PhaseNightVote || sess.DayNumber != 1 {
		t.Errorf("Expected night session day 1, got %s day %d", sess.Phase, sess.DayNumber)
	}
	if sess.TotalEligibleVoters != len(players) {
		t.Errorf("Expected %d eligible voters, got %d", len(players), sess.TotalEligibleVoters)
	}
}

func TestStartGame_ConflictingActiveGame(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, _, err := eng.StartGame(ctx, "room-1", []string{"a", "b", "c"}, 1, 60); err != nil {
		t.Fatalf("First StartGame failed: %v", err)
	}
	if _, _, err := eng.StartGame(ctx, "room-1", []string{"x", "y", "z"}, 1, 60); !errors.Is(err, ErrConflictingActiveGame) {
		t.Errorf("Expected ErrConflictingActiveGame, got %v", err)
	}

	// A different room is unaffected
	if _, _, err := eng.StartGame(ctx, "room-2", []string{"x", "y", "z"}, 1, 60); err != nil {
		t.Errorf("StartGame in another room failed: %v", err)
	}
}

func TestEvaluateWinCondition(t *testing.T) {
	eng, _, conn := newTestEngine(t)
	ctx := context.Background()

	cases := []struct {
		name       string
		mafiaAlive int
		citAlive   int
		winner     string
		over       bool
	}{
		{"game continues", 1, 3, "", false},
		{"citizens win", 0, 2, models.WinnerCitizens, true},
		{"mafia parity", 2, 2, models.WinnerMafia, true},
		{"mafia majority", 2, 1, models.WinnerMafia, true},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gameID := testutil.CreateTestGame(t, conn, "room-"+tc.name, models.GameInProgress, models.PhaseNightVote, 1)
			for j := 0; j < tc.mafiaAlive; j++ {
				testutil.AddTestPlayer(t, conn, gameID, "m"+string(rune('a'+i))+string(rune('0'+j)), models.RoleMafia, true)
			}
			for j := 0; j < tc.citAlive; j++ {
				testutil.AddTestPlayer(t, conn, gameID, "c"+string(rune('a'+i))+string(rune('0'+j)), models.RoleCitizen, true)
			}
			// Dead players never count
			testutil.AddTestPlayer(t, conn, gameID, "dead-m"+string(rune('a'+i)), models.RoleMafia, false)

			winner, over, err := eng.EvaluateWinCondition(ctx, gameID)
			if err != nil {
				t.Fatalf("EvaluateWinCondition failed: %v", err)
			}
			if winner != tc.winner || over != tc.over {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tc.winner, tc.over, winner, over)
			}
		})
	}
}

func TestEndGame_AdminAbort(t *testing.T) {
	eng, hub, _ := newTestEngine(t)
	ctx := context.Background()

	game, _, err := eng.StartGame(ctx, "room-1", []string{"a", "b", "c", "d"}, 1, 60)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	ended, err := eng.EndGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("EndGame failed: %v", err)
	}
	if ended.Status != models.GameFinished {
		t.Errorf("Expected finished, got %s", ended.Status)
	}
	if ended.Winner != nil {
		t.Errorf("Admin abort records no winner, got %v", *ended.Winner)
	}
	if ended.EndedAt == nil {
		t.Error("Expected ended_at to be set")
	}

	if got := len(hub.byTopic(models.TopicGameOver)); got != 1 {
		t.Errorf("Expected 1 game-over broadcast, got %d", got)
	}

	if _, err := eng.EndGame(ctx, game.ID); !errors.Is(err, ErrGameFinished) {
		t.Errorf("Expected ErrGameFinished on repeat, got %v", err)
	}
}

func TestEndGame_NotFound(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	if _, err := eng.EndGame(context.Background(), "nope"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Expected ErrGameNotFound, got %v", err)
	}
}

func TestAdvancePhase_ForcesRoundResolution(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	game, sess, err := eng.StartGame(ctx, "room-1", []string{"a", "b", "c", "d"}, 1, 600)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	advanced, err := eng.AdvancePhase(ctx, game.ID)
	if err != nil {
		t.Fatalf("AdvancePhase failed: %v", err)
	}
	if advanced.CurrentPhase != models.PhaseDayVote || advanced.CurrentDay != 1 {
		t.Errorf("Expected day_vote day 1, got %s day %d", advanced.CurrentPhase, advanced.CurrentDay)
	}

	// The voteless night round went straight to expired
	old, err := eng.store.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Reload session failed: %v", err)
	}
	if old.Status != models.SessionExpired {
		t.Errorf("Expected expired night session, got %s", old.Status)
	}

	// And a day session is now running
	current, err := eng.GetCurrentActiveSession(ctx, game.ID)
	if err != nil {
		t.Fatalf("Expected active day session: %v", err)
	}
	if current.Phase != models.PhaseDayVote {
		t.Errorf("Expected day_vote session, got %s", current.Phase)
	}
}

func TestGetState_WithholdsRolesUntilGameOver(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	game, _, err := eng.StartGame(ctx, "room-1", []string{"a", "b", "c"}, 1, 60)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	state, err := eng.GetState(ctx, game.ID)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if len(state.Players) != 3 {
		t.Fatalf("Expected 3 players, got %d", len(state.Players))
	}
	for _, p := range state.Players {
		if p.Role != "" {
			t.Errorf("Role leaked while game running: %s has %s", p.UserID, p.Role)
		}
	}
	if state.Session == nil {
		t.Error("Expected the active session in state")
	}

	if _, err := eng.EndGame(ctx, game.ID); err != nil {
		t.Fatalf("EndGame failed: %v", err)
	}

	state, err = eng.GetState(ctx, game.ID)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	for _, p := range state.Players {
		if p.Role != models.RoleMafia && p.Role != models.RoleCitizen {
			t.Errorf("Expected role revealed for %s, got %q", p.UserID, p.Role)
		}
	}
}

// TestFullGameLoop walks a 4-player game end to end: the mafia kills a
// citizen at night, the town lynches the mafia at day, citizens win.
func TestFullGameLoop(t *testing.T) {
	eng, hub, conn := newTestEngine(t)
	ctx := context.Background()

	game, night, err := eng.StartGame(ctx, "room-1", []string{"p1", "p2", "p3", "p4"}, 1, 60)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	// Roles are shuffled; read them back
	var mafiaID string
	if err := conn.QueryRow("SELECT user_id FROM player WHERE game_id = $1 AND role = 'mafia'", game.ID).Scan(&mafiaID); err != nil {
		t.Fatalf("Failed to find mafia: %v", err)
	}
	rows, err := conn.Query("SELECT user_id FROM player WHERE game_id = $1 AND role = 'citizen'", game.ID)
	if err != nil {
		t.Fatalf("Failed to list citizens: %v", err)
	}
	var citizens []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		citizens = append(citizens, id)
	}
	rows.Close()
	if len(citizens) != 3 {
		t.Fatalf("Expected 3 citizens, got %d", len(citizens))
	}
	victim := citizens[0]

	// Night 1: mafia targets a citizen, everyone else casts decoys on the
	// last voter's target
	if _, err := eng.CastVote(ctx, night.ID, mafiaID, victim); err != nil {
		t.Fatalf("Mafia vote failed: %v", err)
	}
	for _, c := range citizens {
		if _, err := eng.CastVote(ctx, night.ID, c, mafiaID); err != nil {
			t.Fatalf("Decoy vote from %s failed: %v", c, err)
		}
	}

	var alive bool
	if err := conn.QueryRow("SELECT alive FROM player WHERE game_id = $1 AND user_id = $2", game.ID, victim).Scan(&alive); err != nil {
		t.Fatalf("Failed to load victim: %v", err)
	}
	if alive {
		t.Fatal("Expected the mafia's target eliminated after night 1")
	}

	// Day 1: survivors lynch the mafia
	day, err := eng.GetCurrentActiveSession(ctx, game.ID)
	if err != nil {
		t.Fatalf("Expected day session: %v", err)
	}
	if day.Phase != models.PhaseDayVote || day.TotalEligibleVoters != 3 {
		t.Fatalf("Expected day session with 3 voters, got %s with %d", day.Phase, day.TotalEligibleVoters)
	}
	for _, voter := range []string{mafiaID, citizens[1], citizens[2]} {
		if _, err := eng.CastVote(ctx, day.ID, voter, mafiaID); err != nil {
			t.Fatalf("Day vote from %s failed: %v", voter, err)
		}
	}

	final, err := eng.store.GetGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("Reload game failed: %v", err)
	}
	if final.Status != models.GameFinished {
		t.Fatalf("Expected finished game, got %s", final.Status)
	}
	if final.Winner == nil || *final.Winner != models.WinnerCitizens {
		t.Errorf("Expected citizens win, got %v", final.Winner)
	}
	if final.CurrentPhase != models.PhaseGameOver {
		t.Errorf("Expected game_over phase, got %s", final.CurrentPhase)
	}

	if got := len(hub.byTopic(models.TopicGameOver)); got != 1 {
		t.Errorf("Expected 1 game-over broadcast, got %d", got)
	}
}
