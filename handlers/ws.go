// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"mafia-night/broadcast"
	"mafia-night/engine"
	"mafia-night/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type WSHandler struct {
	engine *engine.Engine
	hub    *broadcast.Hub
}

func NewWSHandler(eng *engine.Engine, hub *broadcast.Hub) *WSHandler {
	return &WSHandler{engine: eng, hub: hub}
}

// Subscribe handles GET /games/{id}/ws. It upgrades the connection and
// streams round-update, round-complete, timer-tick, and game-over events
// for the given game until the client disconnects.
func (h *WSHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "game id is required")
		return
	}

	if _, err := h.engine.GetState(r.Context(), gameID); err != nil {
		middleware.EngineError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "game_id", gameID, "error", err)
		return
	}

	broadcast.NewClient(h.hub, gameID, conn).Run()
}
