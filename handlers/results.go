// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"mafia-night/engine"
	"mafia-night/middleware"
)

type ResultsHandler struct {
	engine *engine.Engine
}

func NewResultsHandler(eng *engine.Engine) *ResultsHandler {
	return &ResultsHandler{engine: eng}
}

// GetResults handles GET /sessions/{id}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	results, err := h.engine.Results(r.Context(), sessionID)
	if err != nil {
		middleware.EngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}
