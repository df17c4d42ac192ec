// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The same SQL runs on both sqlite and postgres: no server-side defaults,
// all timestamps written by the application.
const schema = `
-- Games
CREATE TABLE IF NOT EXISTS game (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('in_progress', 'finished')),
    current_phase TEXT NOT NULL CHECK (current_phase IN ('night_vote', 'day_vote', 'day_discussion', 'game_over')),
    current_day INTEGER NOT NULL,
    round_seconds INTEGER NOT NULL,
    winner TEXT,
    created_at TIMESTAMP NOT NULL,
    started_at TIMESTAMP,
    ended_at TIMESTAMP
);

-- One running game per room.
CREATE UNIQUE INDEX IF NOT EXISTS idx_game_room_active ON game(room_id) WHERE status = 'in_progress';
CREATE INDEX IF NOT EXISTS idx_game_room ON game(room_id);

-- Players in games
CREATE TABLE IF NOT EXISTS player (
    id TEXT PRIMARY KEY,
    game_id TEXT NOT NULL REFERENCES game(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('mafia', 'citizen')),
    alive BOOLEAN NOT NULL,
    version INTEGER NOT NULL,
    UNIQUE (game_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_player_game ON player(game_id);

-- Voting sessions
CREATE TABLE IF NOT EXISTS voting_session (
    id TEXT PRIMARY KEY,
    game_id TEXT NOT NULL REFERENCES game(id) ON DELETE CASCADE,
    phase TEXT NOT NULL CHECK (phase IN ('night_vote', 'day_vote')),
    day_number INTEGER NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('active', 'completed', 'expired')),
    started_at TIMESTAMP NOT NULL,
    ends_at TIMESTAMP NOT NULL,
    total_eligible_voters INTEGER NOT NULL,
    votes_received INTEGER NOT NULL CHECK (votes_received <= total_eligible_voters),
    result_user_id TEXT,
    is_tie BOOLEAN NOT NULL,
    version INTEGER NOT NULL
);

-- At most one active session per (game, phase, day).
CREATE UNIQUE INDEX IF NOT EXISTS idx_session_active ON voting_session(game_id, phase, day_number) WHERE status = 'active';
CREATE INDEX IF NOT EXISTS idx_session_game ON voting_session(game_id);
CREATE INDEX IF NOT EXISTS idx_session_status ON voting_session(status);

-- Votes
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES voting_session(id) ON DELETE CASCADE,
    game_id TEXT NOT NULL REFERENCES game(id) ON DELETE CASCADE,
    phase TEXT NOT NULL,
    day_number INTEGER NOT NULL,
    voter_id TEXT NOT NULL,
    target_user_id TEXT NOT NULL,
    is_valid BOOLEAN NOT NULL,
    voted_at TIMESTAMP NOT NULL,
    UNIQUE (session_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_session ON vote(session_id);
CREATE INDEX IF NOT EXISTS idx_vote_target ON vote(session_id, target_user_id);

-- Cached per-target aggregates
CREATE TABLE IF NOT EXISTS vote_result (
    session_id TEXT NOT NULL REFERENCES voting_session(id) ON DELETE CASCADE,
    target_user_id TEXT NOT NULL,
    vote_count INTEGER NOT NULL,
    mafia_vote_count INTEGER NOT NULL,
    PRIMARY KEY (session_id, target_user_id)
);
`
