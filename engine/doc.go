// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the voting round and game-phase core.

# Lifecycle

StartGame validates the configuration, shuffles roles uniformly, persists
game plus role rows atomically, and opens the first night session. After
every resolved round the engine evaluates the win condition: citizens win
when no mafia remain, mafia win at parity, otherwise the next round opens
in the opposite phase (day wraps back to night with the day counter
incremented).

# Sessions

A session is a state machine: ACTIVE -> {COMPLETED, EXPIRED}, terminal.
Two independent producers drive the transition - the last eligible ballot
(client-driven) and the expiry sweep (scheduler-driven). Both funnel into
idempotent CompleteSession/ExpireSession calls guarded by a single
compare-and-swap on the status column; the loser of the race is a silent
no-op, so exactly one elimination and one completion broadcast occur.

# Strategies

The day and night phases differ only in policy, captured by the Strategy
interface with exactly two variants:

  - day: every valid ballot counts, voter identities are public, and a tie
    at the top eliminates no one.
  - night: only mafia ballots count (citizen ballots are accepted decoys),
    votes are secret, and a tie eliminates one tied target uniformly at
    random.

The tie-break randomness is injected (a seedable *rand.Rand) so it is
deterministic under test.

# Timer

Timer runs the expiry sweep and the remaining-time broadcast as periodic
loops. Errors are per-item: one malformed session never stops the sweep
for the others.

The engine holds no in-memory game state; every operation works against
the store, so multiple replicas can serve the same games.
*/
package engine
