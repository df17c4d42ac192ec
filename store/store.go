// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mafia-night/models"
)

// ErrSessionClosed is returned by CastVote when the guarded counter update
// matches no row: the session left ACTIVE, or the vote limit was reached,
// between validation and commit.
var ErrSessionClosed = errors.New("session is not accepting votes")

// Store provides repository-style access to games, players, sessions,
// votes, and cached results. It holds no state beyond the connection pool,
// so any number of engine instances can share one database.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// IsUniqueViolation reports whether err is a uniqueness-constraint error
// from either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

const gameColumns = "id, room_id, status, current_phase, current_day, round_seconds, winner, created_at, started_at, ended_at"

func scanGame(row *sql.Row) (*models.Game, error) {
	var g models.Game
	err := row.Scan(&g.ID, &g.RoomID, &g.Status, &g.CurrentPhase, &g.CurrentDay,
		&g.RoundSeconds, &g.Winner, &g.CreatedAt, &g.StartedAt, &g.EndedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGameWithPlayers persists a game together with all of its role
// assignments in one transaction. The game is never readable without its
// players.
func (s *Store) CreateGameWithPlayers(ctx context.Context, g *models.Game, players []models.Player) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create game: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO game (id, room_id, status, current_phase, current_day, round_seconds, winner, created_at, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, g.ID, g.RoomID, g.Status, g.CurrentPhase, g.CurrentDay, g.RoundSeconds,
		g.Winner, g.CreatedAt, g.StartedAt, g.EndedAt)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	for i := range players {
		p := &players[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO player (id, game_id, user_id, role, alive, version)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.ID, p.GameID, p.UserID, p.Role, p.Alive, p.Version)
		if err != nil {
			return fmt.Errorf("insert player %s: %w", p.UserID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetGame(ctx context.Context, id string) (*models.Game, error) {
	return scanGame(s.db.QueryRowContext(ctx,
		"SELECT "+gameColumns+" FROM game WHERE id = $1", id))
}

func (s *Store) GetActiveGameByRoom(ctx context.Context, roomID string) (*models.Game, error) {
	return scanGame(s.db.QueryRowContext(ctx,
		"SELECT "+gameColumns+" FROM game WHERE room_id = $1 AND status = 'in_progress'", roomID))
}

// UpdateGamePhase advances the phase pointer of a running game.
func (s *Store) UpdateGamePhase(ctx context.Context, gameID, phase string, day int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE game SET current_phase = $1, current_day = $2
		WHERE id = $3 AND status = 'in_progress'
	`, phase, day, gameID)
	if err != nil {
		return fmt.Errorf("update game phase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FinishGame transitions a running game to its terminal state. Returns
// false if the game was already finished.
func (s *Store) FinishGame(ctx context.Context, gameID string, winner *string, endedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE game SET status = 'finished', current_phase = 'game_over', winner = $1, ended_at = $2
		WHERE id = $3 AND status = 'in_progress'
	`, winner, endedAt, gameID)
	if err != nil {
		return false, fmt.Errorf("finish game: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const playerColumns = "id, game_id, user_id, role, alive, version"

func (s *Store) queryPlayers(ctx context.Context, query string, args ...interface{}) ([]models.Player, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.GameID, &p.UserID, &p.Role, &p.Alive, &p.Version); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Store) PlayersForGame(ctx context.Context, gameID string) ([]models.Player, error) {
	return s.queryPlayers(ctx,
		"SELECT "+playerColumns+" FROM player WHERE game_id = $1 ORDER BY user_id", gameID)
}

func (s *Store) AlivePlayers(ctx context.Context, gameID string) ([]models.Player, error) {
	return s.queryPlayers(ctx,
		"SELECT "+playerColumns+" FROM player WHERE game_id = $1 AND alive = TRUE ORDER BY user_id", gameID)
}

func (s *Store) GetPlayer(ctx context.Context, gameID, userID string) (*models.Player, error) {
	var p models.Player
	err := s.db.QueryRowContext(ctx,
		"SELECT "+playerColumns+" FROM player WHERE game_id = $1 AND user_id = $2",
		gameID, userID).Scan(&p.ID, &p.GameID, &p.UserID, &p.Role, &p.Alive, &p.Version)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountAliveByRole returns the number of alive mafia and citizens.
func (s *Store) CountAliveByRole(ctx context.Context, gameID string) (mafia, citizens int, err error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, COUNT(*) FROM player
		WHERE game_id = $1 AND alive = TRUE
		GROUP BY role
	`, gameID)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return 0, 0, err
		}
		switch role {
		case models.RoleMafia:
			mafia = count
		case models.RoleCitizen:
			citizens = count
		}
	}
	return mafia, citizens, rows.Err()
}

// EliminatePlayer flips a player's alive flag using the optimistic version
// counter. Returns false on a version mismatch (caller reloads and retries)
// and succeeds silently if the player is already dead.
func (s *Store) EliminatePlayer(ctx context.Context, playerID string, version int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE player SET alive = FALSE, version = version + 1
		WHERE id = $1 AND version = $2 AND alive = TRUE
	`, playerID, version)
	if err != nil {
		return false, fmt.Errorf("eliminate player: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const sessionColumns = "id, game_id, phase, day_number, status, started_at, ends_at, total_eligible_voters, votes_received, result_user_id, is_tie, version"

func scanSession(scan func(dest ...interface{}) error) (*models.VotingSession, error) {
	var v models.VotingSession
	err := scan(&v.ID, &v.GameID, &v.Phase, &v.DayNumber, &v.Status, &v.StartedAt,
		&v.EndsAt, &v.TotalEligibleVoters, &v.VotesReceived, &v.ResultUserID,
		&v.IsTie, &v.Version)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) CreateSession(ctx context.Context, v *models.VotingSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voting_session (id, game_id, phase, day_number, status, started_at, ends_at, total_eligible_voters, votes_received, result_user_id, is_tie, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, v.ID, v.GameID, v.Phase, v.DayNumber, v.Status, v.StartedAt, v.EndsAt,
		v.TotalEligibleVoters, v.VotesReceived, v.ResultUserID, v.IsTie, v.Version)
	return err
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.VotingSession, error) {
	return scanSession(s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM voting_session WHERE id = $1", id).Scan)
}

// GetActiveSession looks up the active session for an exact
// (game, phase, day) tuple.
func (s *Store) GetActiveSession(ctx context.Context, gameID, phase string, day int) (*models.VotingSession, error) {
	return scanSession(s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM voting_session
		WHERE game_id = $1 AND phase = $2 AND day_number = $3 AND status = 'active'
	`, gameID, phase, day).Scan)
}

// GetCurrentActiveSession returns the game's active session regardless of
// phase and day. Phase sequencing guarantees at most one exists.
func (s *Store) GetCurrentActiveSession(ctx context.Context, gameID string) (*models.VotingSession, error) {
	return scanSession(s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM voting_session
		WHERE game_id = $1 AND status = 'active'
		ORDER BY started_at DESC LIMIT 1
	`, gameID).Scan)
}

func (s *Store) querySessions(ctx context.Context, query string, args ...interface{}) ([]models.VotingSession, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.VotingSession
	for rows.Next() {
		v, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *v)
	}
	return sessions, rows.Err()
}

// ListActiveSessions returns every active session in the system, for the
// timer broadcast loop.
func (s *Store) ListActiveSessions(ctx context.Context) ([]models.VotingSession, error) {
	return s.querySessions(ctx,
		"SELECT "+sessionColumns+" FROM voting_session WHERE status = 'active' ORDER BY ends_at")
}

// ListExpiredActiveSessions returns active sessions whose deadline has
// passed, for the expiry sweep.
func (s *Store) ListExpiredActiveSessions(ctx context.Context, now time.Time) ([]models.VotingSession, error) {
	return s.querySessions(ctx,
		"SELECT "+sessionColumns+" FROM voting_session WHERE status = 'active' AND ends_at < $1 ORDER BY ends_at", now)
}

// CastVote atomically records a ballot: inserts the vote row, increments
// votes_received under the session's ACTIVE/limit guard, and refreshes the
// cached aggregate for the affected target. A uniqueness violation on the
// vote row means the voter already has a ballot in this session (the caller
// detects it with IsUniqueViolation). Returns the updated counter.
func (s *Store) CastVote(ctx context.Context, v *models.Vote) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin cast vote: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, session_id, game_id, phase, day_number, voter_id, target_user_id, is_valid, voted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, v.ID, v.SessionID, v.GameID, v.Phase, v.DayNumber, v.VoterID,
		v.TargetUserID, v.IsValid, v.VotedAt)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE voting_session
		SET votes_received = votes_received + 1, version = version + 1
		WHERE id = $1 AND status = 'active' AND votes_received < total_eligible_voters
	`, v.SessionID)
	if err != nil {
		return 0, fmt.Errorf("increment votes_received: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrSessionClosed
	}

	if err := refreshResult(ctx, tx, v.SessionID, v.TargetUserID); err != nil {
		return 0, err
	}

	var received int
	err = tx.QueryRowContext(ctx,
		"SELECT votes_received FROM voting_session WHERE id = $1", v.SessionID).Scan(&received)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit cast vote: %w", err)
	}
	return received, nil
}

// refreshResult recomputes the cached counts for one (session, target) pair
// from the vote table. Only the affected target is touched.
func refreshResult(ctx context.Context, tx *sql.Tx, sessionID, targetUserID string) error {
	var voteCount int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote
		WHERE session_id = $1 AND target_user_id = $2 AND is_valid = TRUE
	`, sessionID, targetUserID).Scan(&voteCount)
	if err != nil {
		return fmt.Errorf("count votes: %w", err)
	}

	var mafiaVoteCount int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote v
		JOIN player p ON p.game_id = v.game_id AND p.user_id = v.voter_id
		WHERE v.session_id = $1 AND v.target_user_id = $2 AND v.is_valid = TRUE AND p.role = 'mafia'
	`, sessionID, targetUserID).Scan(&mafiaVoteCount)
	if err != nil {
		return fmt.Errorf("count mafia votes: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote_result (session_id, target_user_id, vote_count, mafia_vote_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, target_user_id)
		DO UPDATE SET vote_count = excluded.vote_count, mafia_vote_count = excluded.mafia_vote_count
	`, sessionID, targetUserID, voteCount, mafiaVoteCount)
	if err != nil {
		return fmt.Errorf("upsert vote result: %w", err)
	}
	return nil
}

// TransitionSession moves a session out of ACTIVE, writing the resolved
// outcome. The WHERE status = 'active' guard makes the transition a
// compare-and-swap: exactly one of two racing callers wins, the other gets
// false.
func (s *Store) TransitionSession(ctx context.Context, sessionID, toStatus string, resultUserID *string, isTie bool) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE voting_session
		SET status = $1, result_user_id = $2, is_tie = $3, version = version + 1
		WHERE id = $4 AND status = 'active'
	`, toStatus, resultUserID, isTie, sessionID)
	if err != nil {
		return false, fmt.Errorf("transition session: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) ResultsForSession(ctx context.Context, sessionID string) ([]models.VoteResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, target_user_id, vote_count, mafia_vote_count
		FROM vote_result WHERE session_id = $1
		ORDER BY target_user_id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.VoteResult
	for rows.Next() {
		var r models.VoteResult
		if err := rows.Scan(&r.SessionID, &r.TargetUserID, &r.VoteCount, &r.MafiaVoteCount); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ValidVotesForSession returns the individual valid ballots of a session,
// used for public (day) result views.
func (s *Store) ValidVotesForSession(ctx context.Context, sessionID string) ([]models.VotePublic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT voter_id, target_user_id FROM vote
		WHERE session_id = $1 AND is_valid = TRUE
		ORDER BY voted_at, voter_id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []models.VotePublic
	for rows.Next() {
		var v models.VotePublic
		if err := rows.Scan(&v.VoterID, &v.TargetUserID); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// CountValidVotes returns the number of valid persisted votes in a session.
func (s *Store) CountValidVotes(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vote WHERE session_id = $1 AND is_valid = TRUE", sessionID).Scan(&count)
	return count, err
}
