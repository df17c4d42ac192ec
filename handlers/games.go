// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"mafia-night/cliparse"
	"mafia-night/engine"
	"mafia-night/middleware"
	"mafia-night/models"
)

type GamesHandler struct {
	engine *engine.Engine
	cfg    cliparse.Config
}

func NewGamesHandler(eng *engine.Engine, cfg cliparse.Config) *GamesHandler {
	return &GamesHandler{engine: eng, cfg: cfg}
}

// StartGame handles POST /games
func (h *GamesHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req models.StartGameRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.RoomID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "room_id is required")
		return
	}
	if len(req.PlayerUserIDs) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "player_user_ids is required")
		return
	}
	roundSeconds := req.RoundSeconds
	if roundSeconds == 0 {
		roundSeconds = h.cfg.RoundSeconds
	}

	game, session, err := h.engine.StartGame(r.Context(), req.RoomID, req.PlayerUserIDs, req.MafiaCount, roundSeconds)
	if err != nil {
		middleware.EngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.StartGameResponse{
		Game:    *game,
		Session: *session,
	})
}

// GetState handles GET /games/{id}
func (h *GamesHandler) GetState(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "game id is required")
		return
	}

	state, err := h.engine.GetState(r.Context(), gameID)
	if err != nil {
		middleware.EngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, state)
}

// AdvancePhase handles POST /games/{id}/advance (administrative override)
func (h *GamesHandler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "game id is required")
		return
	}

	game, err := h.engine.AdvancePhase(r.Context(), gameID)
	if err != nil {
		middleware.EngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, game)
}

// EndGame handles POST /games/{id}/end (administrative override)
func (h *GamesHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "game id is required")
		return
	}

	game, err := h.engine.EndGame(r.Context(), gameID)
	if err != nil {
		middleware.EngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.EndGameResponse{Game: *game})
}

// GetByRoom handles GET /rooms/{roomID}/game
func (h *GamesHandler) GetByRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	if roomID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "room id is required")
		return
	}

	game, err := h.engine.GetActiveGameByRoom(r.Context(), roomID)
	if err != nil {
		middleware.EngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, game)
}
