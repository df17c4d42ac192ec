// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store provides repository-style persistence for the voting engine.

All access goes through a Store wrapping *sql.DB; the Store keeps no
in-memory state, so multiple engine replicas can operate against the same
database.

# Write guards

Three kinds of write are concurrency-sensitive and get structural guards:

  - CastVote: vote insert (UNIQUE closes the duplicate-voter race) plus a
    guarded counter increment, in one transaction.
  - TransitionSession: compare-and-swap on status = 'active'; the loser of
    a completion/expiry race affects zero rows.
  - EliminatePlayer: compare-and-swap on the player's version column.

# Lookups

Compound lookups mirror the engine's needs: active session per
(game, phase, day), current active session per game, expired active
sessions for the sweep, alive players and per-role counts for win
evaluation.
*/
package store
