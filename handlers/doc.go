// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Mafia Night API.

# Handler Types

Each handler is a struct holding its engine (and, for websockets, hub)
dependencies:

  - GamesHandler: Game lifecycle (start, state, advance, end, room lookup)
  - VotingHandler: Ballot submission and current-session lookup
  - ResultsHandler: Per-session tallies and revealed votes
  - WSHandler: Websocket subscription to live game events

Handlers are created via constructor functions:

	gamesHandler := handlers.NewGamesHandler(eng, cfg)

# Game Lifecycle

Games alternate between night and day voting rounds until one faction wins:

	POST /games               → StartGame (assigns roles, opens night round)
	GET  /games/{id}          → GetState
	POST /games/{id}/advance  → AdvancePhase (force-close the current round)
	POST /games/{id}/end      → EndGame (abort without a winner)
	GET  /rooms/{roomID}/game → GetByRoom

# Voting Flow

Voters interact with the current round by session id:

	GET  /games/{id}/session      → GetCurrentSession
	POST /sessions/{id}/votes     → CastVote
	GET  /sessions/{id}/results   → GetResults

Night rounds accept ballots from every living player but count only
mafia ballots, and never reveal individual votes. Day rounds count and
reveal everything.

# Live Events

Clients subscribe to a game's event stream over a websocket:

	GET /games/{id}/ws → Subscribe

The stream carries round-update, round-complete, timer-tick, and
game-over events as JSON envelopes.
*/
package handlers
