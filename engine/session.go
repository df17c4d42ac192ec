// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mafia-night/models"
	"mafia-night/store"
)

// StartSession opens a new voting round for the game's current day in the
// given phase. The eligible-voter count is snapshotted here and never
// re-queried: players cannot retroactively change the completion threshold
// of a running round.
func (e *Engine) StartSession(ctx context.Context, game *models.Game, phase string, durationSeconds int) (*models.VotingSession, error) {
	if !models.VotingPhase(phase) {
		return nil, ErrInvalidConfiguration
	}

	alive, err := e.store.AlivePlayers(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("load alive players: %w", err)
	}
	if len(alive) == 0 {
		return nil, ErrNoEligibleVoters
	}

	_, err = e.store.GetActiveSession(ctx, game.ID, phase, game.CurrentDay)
	if err == nil {
		return nil, ErrSessionAlreadyActive
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check active session: %w", err)
	}

	now := e.now()
	sess := &models.VotingSession{
		ID:                  uuid.New().String(),
		GameID:              game.ID,
		Phase:               phase,
		DayNumber:           game.CurrentDay,
		Status:              models.SessionActive,
		StartedAt:           now,
		EndsAt:              now.Add(time.Duration(durationSeconds) * time.Second),
		TotalEligibleVoters: len(alive),
		VotesReceived:       0,
		Version:             1,
	}

	if err := e.store.CreateSession(ctx, sess); err != nil {
		// The partial unique index backstops the pre-check above.
		if store.IsUniqueViolation(err) {
			return nil, ErrSessionAlreadyActive
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	slog.Info("voting session started",
		"session_id", sess.ID,
		"game_id", game.ID,
		"phase", phase,
		"day", game.CurrentDay,
		"eligible_voters", sess.TotalEligibleVoters,
	)

	e.hub.Broadcast(game.ID, models.TopicRoundUpdate, models.RoundUpdatePayload{
		SessionID:           sess.ID,
		Phase:               sess.Phase,
		DayNumber:           sess.DayNumber,
		VotesReceived:       0,
		TotalEligibleVoters: sess.TotalEligibleVoters,
		EndsAt:              sess.EndsAt,
	})

	return sess, nil
}

// CastVote validates and records one ballot. On success it refreshes the
// affected target's aggregate, broadcasts the round state, and completes
// the session when the last eligible voter has voted.
func (e *Engine) CastVote(ctx context.Context, sessionID, voterID, targetUserID string) (*models.VotingSession, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.Status != models.SessionActive {
		return nil, ErrSessionNotActive
	}
	if e.now().After(sess.EndsAt) {
		// Late ballot doubles as an expiry trigger; the sweep would catch
		// this session within its next interval anyway.
		if err := e.ExpireSession(ctx, sessionID); err != nil {
			slog.Error("expire on late vote failed", "session_id", sessionID, "error", err)
		}
		return nil, ErrSessionExpired
	}

	voter, err := e.store.GetPlayer(ctx, sess.GameID, voterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVoterNotInGame
		}
		return nil, fmt.Errorf("load voter: %w", err)
	}
	target, err := e.store.GetPlayer(ctx, sess.GameID, targetUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTargetNotInGame
		}
		return nil, fmt.Errorf("load target: %w", err)
	}

	strat := ForPhase(sess.Phase)
	if err := strat.ValidateVote(voter, target); err != nil {
		return nil, err
	}

	vote := &models.Vote{
		ID:           uuid.New().String(),
		SessionID:    sess.ID,
		GameID:       sess.GameID,
		Phase:        sess.Phase,
		DayNumber:    sess.DayNumber,
		VoterID:      voterID,
		TargetUserID: targetUserID,
		IsValid:      true,
		VotedAt:      e.now(),
	}

	received, err := e.store.CastVote(ctx, vote)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrDuplicateVote
		}
		if errors.Is(err, store.ErrSessionClosed) {
			return nil, ErrSessionNotActive
		}
		return nil, fmt.Errorf("cast vote: %w", err)
	}

	slog.Info("vote cast",
		"session_id", sess.ID,
		"game_id", sess.GameID,
		"phase", sess.Phase,
		"votes_received", received,
		"total", sess.TotalEligibleVoters,
	)

	update := models.RoundUpdatePayload{
		SessionID:           sess.ID,
		Phase:               sess.Phase,
		DayNumber:           sess.DayNumber,
		VotesReceived:       received,
		TotalEligibleVoters: sess.TotalEligibleVoters,
		EndsAt:              sess.EndsAt,
	}
	if strat.VotesArePublic() {
		if tallies, err := e.tallies(ctx, sess.ID, strat); err == nil {
			update.Tallies = tallies
		} else {
			slog.Error("load tallies for broadcast failed", "session_id", sess.ID, "error", err)
		}
	}
	e.hub.Broadcast(sess.GameID, models.TopicRoundUpdate, update)

	// Client-driven completion: the last eligible ballot closes the round
	// without waiting for the timer. The ballot is already accepted, so a
	// completion failure is logged and left for the sweep to retry rather
	// than surfaced to this voter.
	if received >= sess.TotalEligibleVoters {
		if err := e.CompleteSession(ctx, sess.ID); err != nil {
			slog.Error("complete on last vote failed", "session_id", sess.ID, "error", err)
		}
	}

	refreshed, err := e.store.GetSession(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("reload session: %w", err)
	}
	return refreshed, nil
}

// CompleteSession resolves an active session: determines the result via the
// phase strategy, applies the elimination, and hands control to the
// lifecycle. Idempotent - re-entry on a terminal session is a silent no-op,
// because the all-voted path and the expiry sweep race to call it.
func (e *Engine) CompleteSession(ctx context.Context, sessionID string) error {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("load session: %w", err)
	}
	if sess.Status != models.SessionActive {
		return nil
	}

	results, err := e.store.ResultsForSession(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}

	strat := ForPhase(sess.Phase)
	e.rngMu.Lock()
	outcome := strat.DetermineResult(results, e.rng)
	e.rngMu.Unlock()

	var resultUserID *string
	if outcome.TargetUserID != "" {
		resultUserID = &outcome.TargetUserID
	}
	isTie := outcome.Kind == OutcomeTieNoElimination || outcome.Kind == OutcomeTieRandomElimination

	won, err := e.store.TransitionSession(ctx, sess.ID, models.SessionCompleted, resultUserID, isTie)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if !won {
		// Lost the race against the other completion path.
		return nil
	}

	if resultUserID != nil {
		if err := e.eliminate(ctx, sess.GameID, *resultUserID); err != nil {
			return err
		}
	}

	slog.Info("voting session completed",
		"session_id", sess.ID,
		"game_id", sess.GameID,
		"phase", sess.Phase,
		"outcome", string(outcome.Kind),
		"is_tie", isTie,
	)

	complete := models.RoundCompletePayload{
		SessionID:        sess.ID,
		Phase:            sess.Phase,
		DayNumber:        sess.DayNumber,
		Outcome:          string(outcome.Kind),
		EliminatedUserID: resultUserID,
		IsTie:            isTie,
		Candidates:       outcome.Candidates,
	}
	if tallies, err := e.tallies(ctx, sess.ID, strat); err == nil {
		complete.Tallies = tallies
	} else {
		slog.Error("load tallies for broadcast failed", "session_id", sess.ID, "error", err)
	}
	e.hub.Broadcast(sess.GameID, models.TopicRoundComplete, complete)

	return e.afterRound(ctx, sess.GameID)
}

// ExpireSession handles a session whose deadline passed. Rounds with at
// least one ballot still resolve through the normal completion path; only
// a voteless round goes straight to EXPIRED with no elimination. Idempotent
// under the same guard as CompleteSession.
func (e *Engine) ExpireSession(ctx context.Context, sessionID string) error {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("load session: %w", err)
	}
	if sess.Status != models.SessionActive {
		return nil
	}

	if sess.VotesReceived > 0 {
		return e.CompleteSession(ctx, sessionID)
	}

	won, err := e.store.TransitionSession(ctx, sess.ID, models.SessionExpired, nil, false)
	if err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	if !won {
		return nil
	}

	slog.Info("voting session expired with no votes",
		"session_id", sess.ID,
		"game_id", sess.GameID,
		"phase", sess.Phase,
	)

	e.hub.Broadcast(sess.GameID, models.TopicRoundComplete, models.RoundCompletePayload{
		SessionID: sess.ID,
		Phase:     sess.Phase,
		DayNumber: sess.DayNumber,
		Outcome:   string(OutcomeNoElimination),
	})

	return e.afterRound(ctx, sess.GameID)
}

// GetCurrentActiveSession returns the game's single active session.
func (e *Engine) GetCurrentActiveSession(ctx context.Context, gameID string) (*models.VotingSession, error) {
	sess, err := e.store.GetCurrentActiveSession(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load active session: %w", err)
	}
	return sess, nil
}

// Results returns a session's phase-visible results: counted tallies for
// both phases, individual ballots only when the phase is public.
func (e *Engine) Results(ctx context.Context, sessionID string) (*models.SessionResultsResponse, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	strat := ForPhase(sess.Phase)
	tallies, err := e.tallies(ctx, sess.ID, strat)
	if err != nil {
		return nil, err
	}

	resp := &models.SessionResultsResponse{
		Session: *sess,
		Results: tallies,
	}
	if strat.VotesArePublic() {
		votes, err := e.store.ValidVotesForSession(ctx, sess.ID)
		if err != nil {
			return nil, fmt.Errorf("load votes: %w", err)
		}
		resp.Votes = votes
	}
	return resp, nil
}

// tallies projects the cached aggregates through the phase's counting rule.
func (e *Engine) tallies(ctx context.Context, sessionID string, strat Strategy) ([]models.TargetTally, error) {
	results, err := e.store.ResultsForSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	tallies := make([]models.TargetTally, 0, len(results))
	for _, r := range results {
		tallies = append(tallies, models.TargetTally{
			TargetUserID: r.TargetUserID,
			Count:        strat.CountedVotes(r),
		})
	}
	return tallies, nil
}

// eliminate flips a player's alive flag, retrying around optimistic-version
// conflicts. Already-dead targets are treated as done.
func (e *Engine) eliminate(ctx context.Context, gameID, userID string) error {
	for attempt := 0; attempt < writeRetries; attempt++ {
		p, err := e.store.GetPlayer(ctx, gameID, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTargetNotInGame
			}
			return fmt.Errorf("load player for elimination: %w", err)
		}
		if !p.Alive {
			return nil
		}
		ok, err := e.store.EliminatePlayer(ctx, p.ID, p.Version)
		if err != nil {
			return err
		}
		if ok {
			slog.Info("player eliminated", "game_id", gameID, "user_id", userID)
			return nil
		}
	}
	return ErrConflict
}
