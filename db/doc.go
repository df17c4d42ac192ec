// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The schema is written to run unchanged on sqlite and postgres.

# Tables

The schema includes:

  - game: game lifecycle state, phase, and day counter
  - player: per-game membership with secret role and alive flag
  - voting_session: one timed voting round per (game, phase, day)
  - vote: individual ballots
  - vote_result: cached per-target vote aggregates

# Relationships

	game 1──* player
	game 1──* voting_session
	voting_session 1──* vote
	voting_session 1──* vote_result

All foreign keys use ON DELETE CASCADE.

# Constraint-backed invariants

Two races are closed structurally rather than by cooperative checks:

  - vote UNIQUE (session_id, voter_id): a voter gets at most one ballot per
    session even under concurrent submission.
  - partial unique index on voting_session (game_id, phase, day_number)
    WHERE status = 'active': at most one active round per game-phase-day.
  - partial unique index on game (room_id) WHERE status = 'in_progress':
    one running game per room.

Optimistic version columns on player and voting_session back the engine's
compare-and-swap writes.
*/
package db
