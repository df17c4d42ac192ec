// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mafia-night/engine"
	"mafia-night/models"
)

// WithLogging wraps a handler with request logging
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Log request
		slog.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		// Call the next handler
		next(w, r)

		// Log completion
		duration := time.Since(start)
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// EngineError maps an engine error to an HTTP response with a structured
// reason, so clients can render "already voted", "time's up", and so on.
func EngineError(w http.ResponseWriter, err error) {
	status := engineStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal error"
	}
	ErrorResponse(w, status, message)
}

func engineStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrGameNotFound),
		errors.Is(err, engine.ErrSessionNotFound),
		errors.Is(err, engine.ErrVoterNotInGame),
		errors.Is(err, engine.ErrTargetNotInGame):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrConflictingActiveGame),
		errors.Is(err, engine.ErrSessionAlreadyActive),
		errors.Is(err, engine.ErrSessionNotActive),
		errors.Is(err, engine.ErrDuplicateVote),
		errors.Is(err, engine.ErrGameFinished),
		errors.Is(err, engine.ErrVoterDead),
		errors.Is(err, engine.ErrTargetDead),
		errors.Is(err, engine.ErrNoEligibleVoters):
		return http.StatusConflict
	case errors.Is(err, engine.ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, engine.ErrConflict):
		return http.StatusServiceUnavailable
	default:
		slog.Error("internal error", "error", err)
		return http.StatusInternalServerError
	}
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// CORS middleware allows cross-origin requests from the frontend
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
