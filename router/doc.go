// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Mafia Night API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(eng, hub, cfg)

# Endpoints

Health:

	GET /health

Game lifecycle:

	POST /games               - Start a game
	GET  /games/{id}          - Current game state
	POST /games/{id}/advance  - Force-close the current round
	POST /games/{id}/end      - Abort the game
	GET  /rooms/{roomID}/game - Active game for a room

Voting:

	GET  /games/{id}/session  - Current active voting session
	POST /sessions/{id}/votes - Cast a ballot

Results:

	GET /sessions/{id}/results - Tallies (and votes, when public)

Live events:

	GET /games/{id}/ws - Websocket event stream

# Handler Initialization

The router creates handler instances with dependency injection:

	gamesHandler := handlers.NewGamesHandler(eng, cfg)
	votingHandler := handlers.NewVotingHandler(eng)
	resultsHandler := handlers.NewResultsHandler(eng)
	wsHandler := handlers.NewWSHandler(eng, hub)
*/
package router
