// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"mafia-night/broadcast"
	"mafia-night/cliparse"
	"mafia-night/engine"
	"mafia-night/handlers"
	"mafia-night/middleware"
)

func NewRouter(eng *engine.Engine, hub *broadcast.Hub, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	gamesHandler := handlers.NewGamesHandler(eng, cfg)
	votingHandler := handlers.NewVotingHandler(eng)
	resultsHandler := handlers.NewResultsHandler(eng)
	wsHandler := handlers.NewWSHandler(eng, hub)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Game lifecycle
	mux.HandleFunc("POST /games", middleware.WithLogging(gamesHandler.StartGame))
	mux.HandleFunc("GET /games/{id}", middleware.WithLogging(gamesHandler.GetState))
	mux.HandleFunc("POST /games/{id}/advance", middleware.WithLogging(gamesHandler.AdvancePhase))
	mux.HandleFunc("POST /games/{id}/end", middleware.WithLogging(gamesHandler.EndGame))
	mux.HandleFunc("GET /rooms/{roomID}/game", middleware.WithLogging(gamesHandler.GetByRoom))

	// Voting
	mux.HandleFunc("GET /games/{id}/session", middleware.WithLogging(votingHandler.GetCurrentSession))
	mux.HandleFunc("POST /sessions/{id}/votes", middleware.WithLogging(votingHandler.CastVote))

	// Results
	mux.HandleFunc("GET /sessions/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Live events (long-lived connection, no request logging)
	mux.HandleFunc("GET /games/{id}/ws", wsHandler.Subscribe)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mafia-night API v1"))
	})

	return mux
}
