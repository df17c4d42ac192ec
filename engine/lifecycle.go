// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"mafia-night/models"
	"mafia-night/store"
)

// StartGame creates a game for a room's player set, assigns secret roles
// with a uniform shuffle, and opens the first night round. The game and all
// role rows are persisted in one atomic unit; no readable state exists
// without the role assignments.
func (e *Engine) StartGame(ctx context.Context, roomID string, playerUserIDs []string, mafiaCount, roundSeconds int) (*models.Game, *models.VotingSession, error) {
	total := len(playerUserIDs)
	if roomID == "" || total < 3 || mafiaCount < 1 || mafiaCount >= total || roundSeconds <= 0 {
		return nil, nil, ErrInvalidConfiguration
	}
	seen := make(map[string]bool, total)
	for _, id := range playerUserIDs {
		if id == "" || seen[id] {
			return nil, nil, ErrInvalidConfiguration
		}
		seen[id] = true
	}

	_, err := e.store.GetActiveGameByRoom(ctx, roomID)
	if err == nil {
		return nil, nil, ErrConflictingActiveGame
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("check active game: %w", err)
	}

	// Uniform shuffle, then the first mafiaCount players are mafia.
	// Fairness, not secrecy, is the requirement here.
	shuffled := make([]string, total)
	copy(shuffled, playerUserIDs)
	e.shuffle(shuffled)

	now := e.now()
	game := &models.Game{
		ID:           uuid.New().String(),
		RoomID:       roomID,
		Status:       models.GameInProgress,
		CurrentPhase: models.PhaseNightVote,
		CurrentDay:   1,
		RoundSeconds: roundSeconds,
		CreatedAt:    now,
		StartedAt:    &now,
	}

	players := make([]models.Player, total)
	for i, userID := range shuffled {
		role := models.RoleCitizen
		if i < mafiaCount {
			role = models.RoleMafia
		}
		players[i] = models.Player{
			ID:      uuid.New().String(),
			GameID:  game.ID,
			UserID:  userID,
			Role:    role,
			Alive:   true,
			Version: 1,
		}
	}

	if err := e.store.CreateGameWithPlayers(ctx, game, players); err != nil {
		// The partial unique index on (room_id) WHERE in_progress backstops
		// the pre-check against a concurrent start for the same room.
		if store.IsUniqueViolation(err) {
			return nil, nil, ErrConflictingActiveGame
		}
		return nil, nil, fmt.Errorf("create game: %w", err)
	}

	slog.Info("game started",
		"game_id", game.ID,
		"room_id", roomID,
		"players", total,
		"mafia", mafiaCount,
		"round_seconds", roundSeconds,
	)

	sess, err := e.StartSession(ctx, game, models.PhaseNightVote, roundSeconds)
	if err != nil {
		return nil, nil, err
	}
	return game, sess, nil
}

// EvaluateWinCondition computes the winner, if any, from the alive-role
// counts. Citizens win the moment no mafia remain; mafia win at parity.
func (e *Engine) EvaluateWinCondition(ctx context.Context, gameID string) (winner string, over bool, err error) {
	mafia, citizens, err := e.store.CountAliveByRole(ctx, gameID)
	if err != nil {
		return "", false, fmt.Errorf("count alive players: %w", err)
	}
	switch {
	case mafia == 0:
		return models.WinnerCitizens, true, nil
	case mafia >= citizens:
		return models.WinnerMafia, true, nil
	default:
		return "", false, nil
	}
}

// afterRound runs after every resolved session: end the game if a side has
// won, otherwise open the next round in the opposite phase.
func (e *Engine) afterRound(ctx context.Context, gameID string) error {
	game, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("load game: %w", err)
	}
	if game.Status != models.GameInProgress {
		return nil
	}

	winner, over, err := e.EvaluateWinCondition(ctx, gameID)
	if err != nil {
		return err
	}
	if over {
		return e.endGame(ctx, game, winner)
	}
	_, err = e.nextRound(ctx, game)
	return err
}

// nextRound flips the phase and opens a session for it, incrementing the
// day number when wrapping from day back to night.
func (e *Engine) nextRound(ctx context.Context, game *models.Game) (*models.VotingSession, error) {
	phase := models.OppositePhase(game.CurrentPhase)
	day := game.CurrentDay
	if game.CurrentPhase == models.PhaseDayVote {
		day++
	}

	if err := e.store.UpdateGamePhase(ctx, game.ID, phase, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameFinished
		}
		return nil, fmt.Errorf("advance phase: %w", err)
	}
	game.CurrentPhase = phase
	game.CurrentDay = day

	return e.StartSession(ctx, game, phase, game.RoundSeconds)
}

// endGame finishes the game. The empty winner marks an administrative
// abort.
func (e *Engine) endGame(ctx context.Context, game *models.Game, winner string) error {
	var w *string
	if winner != "" {
		w = &winner
	}
	finished, err := e.store.FinishGame(ctx, game.ID, w, e.now())
	if err != nil {
		return err
	}
	if !finished {
		return nil
	}

	slog.Info("game over", "game_id", game.ID, "winner", winner, "day", game.CurrentDay)

	e.hub.Broadcast(game.ID, models.TopicGameOver, models.GameOverPayload{
		GameID:    game.ID,
		Winner:    winner,
		DayNumber: game.CurrentDay,
	})
	return nil
}

// EndGame is the administrative termination path. It finishes a running
// game with no winner recorded.
func (e *Engine) EndGame(ctx context.Context, gameID string) (*models.Game, error) {
	game, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("load game: %w", err)
	}
	if game.Status != models.GameInProgress {
		return nil, ErrGameFinished
	}
	if err := e.endGame(ctx, game, ""); err != nil {
		return nil, err
	}
	return e.store.GetGame(ctx, gameID)
}

// AdvancePhase is the administrative override: it force-resolves the
// current round (with whatever votes arrived) through the normal expiry
// path, or opens the next round directly if none is active.
func (e *Engine) AdvancePhase(ctx context.Context, gameID string) (*models.Game, error) {
	game, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("load game: %w", err)
	}
	if game.Status != models.GameInProgress {
		return nil, ErrGameFinished
	}

	sess, err := e.store.GetCurrentActiveSession(ctx, gameID)
	switch {
	case err == nil:
		if err := e.ExpireSession(ctx, sess.ID); err != nil {
			return nil, err
		}
	case errors.Is(err, sql.ErrNoRows):
		if _, err := e.nextRound(ctx, game); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("load active session: %w", err)
	}

	return e.store.GetGame(ctx, gameID)
}

// GetState assembles the client view of a game: lifecycle state, the
// player list (roles withheld until the game is over), and the active
// session if one exists.
func (e *Engine) GetState(ctx context.Context, gameID string) (*models.GameStateResponse, error) {
	game, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("load game: %w", err)
	}

	players, err := e.store.PlayersForGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	public := make([]models.PlayerPublic, 0, len(players))
	for _, p := range players {
		view := models.PlayerPublic{UserID: p.UserID, Alive: p.Alive}
		if game.Status == models.GameFinished {
			view.Role = p.Role
		}
		public = append(public, view)
	}

	resp := &models.GameStateResponse{Game: *game, Players: public}
	sess, err := e.store.GetCurrentActiveSession(ctx, gameID)
	if err == nil {
		resp.Session = sess
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load active session: %w", err)
	}
	return resp, nil
}

// GetActiveGameByRoom resolves the room's running game.
func (e *Engine) GetActiveGameByRoom(ctx context.Context, roomID string) (*models.Game, error) {
	game, err := e.store.GetActiveGameByRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("load game by room: %w", err)
	}
	return game, nil
}
