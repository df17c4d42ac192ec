// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"mafia-night/engine"
	"mafia-night/middleware"
	"mafia-night/models"
)

type VotingHandler struct {
	engine *engine.Engine
}

func NewVotingHandler(eng *engine.Engine) *VotingHandler {
	return &VotingHandler{engine: eng}
}

// CastVote handles POST /sessions/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.VoterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}
	if req.TargetUserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "target_user_id is required")
		return
	}

	session, err := h.engine.CastVote(r.Context(), sessionID, req.VoterID, req.TargetUserID)
	if err != nil {
		middleware.EngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		SessionID:           session.ID,
		Status:              session.Status,
		VotesReceived:       session.VotesReceived,
		TotalEligibleVoters: session.TotalEligibleVoters,
	})
}

// GetCurrentSession handles GET /games/{id}/session
func (h *VotingHandler) GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "game id is required")
		return
	}

	session, err := h.engine.GetCurrentActiveSession(r.Context(), gameID)
	if err != nil {
		middleware.EngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, session)
}
