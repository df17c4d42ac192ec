// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"math/rand"
	"testing"

	"mafia-night/models"
)

func TestForPhase(t *testing.T) {
	if _, ok := ForPhase(models.PhaseNightVote).(nightStrategy); !ok {
		t.Error("Expected night strategy for night_vote")
	}
	if _, ok := ForPhase(models.PhaseDayVote).(dayStrategy); !ok {
		t.Error("Expected day strategy for day_vote")
	}
}

func TestDayStrategy_ClearWinner(t *testing.T) {
	results := []models.VoteResult{
		{TargetUserID: "alice", VoteCount: 3},
		{TargetUserID: "bob", VoteCount: 1},
	}

	outcome := dayStrategy{}.DetermineResult(results, nil)

	if outcome.Kind != OutcomeElimination {
		t.Fatalf("Expected elimination, got %s", outcome.Kind)
	}
	if outcome.TargetUserID != "alice" {
		t.Errorf("Expected alice eliminated, got %s", outcome.TargetUserID)
	}
}

func TestDayStrategy_TieSavesEveryone(t *testing.T) {
	results := []models.VoteResult{
		{TargetUserID: "alice", VoteCount: 2},
		{TargetUserID: "bob", VoteCount: 2},
		{TargetUserID: "carol", VoteCount: 1},
	}

	outcome := dayStrategy{}.DetermineResult(results, nil)

	if outcome.Kind != OutcomeTieNoElimination {
		t.Fatalf("Expected tie_no_elimination, got %s", outcome.Kind)
	}
	if outcome.TargetUserID != "" {
		t.Errorf("Expected no target on a day tie, got %s", outcome.TargetUserID)
	}
	if len(outcome.Candidates) != 2 {
		t.Errorf("Expected 2 tied candidates, got %d", len(outcome.Candidates))
	}
}

func TestDayStrategy_NoVotes(t *testing.T) {
	outcome := dayStrategy{}.DetermineResult(nil, nil)
	if outcome.Kind != OutcomeNoElimination {
		t.Errorf("Expected no_elimination, got %s", outcome.Kind)
	}
}

func TestNightStrategy_CountsOnlyMafiaVotes(t *testing.T) {
	// Citizens piled decoy ballots on bob; the mafia targeted alice.
	results := []models.VoteResult{
		{TargetUserID: "alice", VoteCount: 2, MafiaVoteCount: 2},
		{TargetUserID: "bob", VoteCount: 4, MafiaVoteCount: 0},
	}

	outcome := nightStrategy{}.DetermineResult(results, rand.New(rand.NewSource(1)))

	if outcome.Kind != OutcomeElimination {
		t.Fatalf("Expected elimination, got %s", outcome.Kind)
	}
	if outcome.TargetUserID != "alice" {
		t.Errorf("Expected alice eliminated, got %s", outcome.TargetUserID)
	}
}

func TestNightStrategy_OnlyDecoyVotes(t *testing.T) {
	// No mafia ballot arrived at all: nobody dies.
	results := []models.VoteResult{
		{TargetUserID: "bob", VoteCount: 3, MafiaVoteCount: 0},
	}

	outcome := nightStrategy{}.DetermineResult(results, rand.New(rand.NewSource(1)))

	if outcome.Kind != OutcomeNoElimination {
		t.Errorf("Expected no_elimination, got %s", outcome.Kind)
	}
}

func TestNightStrategy_TieEliminatesRandomCandidate(t *testing.T) {
	results := []models.VoteResult{
		{TargetUserID: "alice", VoteCount: 1, MafiaVoteCount: 1},
		{TargetUserID: "bob", VoteCount: 1, MafiaVoteCount: 1},
	}

	rng := rand.New(rand.NewSource(42))
	hits := map[string]int{}
	for i := 0; i < 1000; i++ {
		outcome := nightStrategy{}.DetermineResult(results, rng)
		if outcome.Kind != OutcomeTieRandomElimination {
			t.Fatalf("Expected tie_random_elimination, got %s", outcome.Kind)
		}
		if outcome.TargetUserID != "alice" && outcome.TargetUserID != "bob" {
			t.Fatalf("Eliminated someone outside the tie: %s", outcome.TargetUserID)
		}
		if len(outcome.Candidates) != 2 {
			t.Fatalf("Expected 2 candidates, got %d", len(outcome.Candidates))
		}
		hits[outcome.TargetUserID]++
	}

	// Roughly uniform across the tied candidates
	if hits["alice"] < 300 || hits["bob"] < 300 {
		t.Errorf("Tie-break looks biased: %v", hits)
	}
}

func TestNightStrategy_CountMafiaVotes(t *testing.T) {
	results := []models.VoteResult{
		{TargetUserID: "alice", MafiaVoteCount: 2},
		{TargetUserID: "bob", MafiaVoteCount: 1},
	}
	if got := (nightStrategy{}).CountMafiaVotes(results); got != 3 {
		t.Errorf("Expected 3 mafia votes, got %d", got)
	}
	if got := (dayStrategy{}).CountMafiaVotes(results); got != 0 {
		t.Errorf("Day phase should report 0 mafia votes, got %d", got)
	}
}

func TestValidateVote_DeadPlayers(t *testing.T) {
	alive := &models.Player{UserID: "a", Alive: true}
	dead := &models.Player{UserID: "d", Alive: false}

	for _, strat := range []Strategy{dayStrategy{}, nightStrategy{}} {
		if err := strat.ValidateVote(dead, alive); err != ErrVoterDead {
			t.Errorf("Expected ErrVoterDead, got %v", err)
		}
		if err := strat.ValidateVote(alive, dead); err != ErrTargetDead {
			t.Errorf("Expected ErrTargetDead, got %v", err)
		}
		if err := strat.ValidateVote(alive, alive); err != nil {
			t.Errorf("Expected self-vote to be allowed, got %v", err)
		}
	}
}
