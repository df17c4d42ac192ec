// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP cross-cutting helpers.

# Helpers

  - WithLogging: request/response logging via slog
  - JSONResponse / ErrorResponse: JSON encoding with status codes
  - EngineError: engine error -> HTTP status mapping
  - ParseJSONBody: request body decoding
  - CORS: cross-origin support with preflight handling

# Error mapping

Engine errors carry their HTTP semantics:

	configuration errors          -> 400
	unknown game/session/player   -> 404
	state conflicts, double votes -> 409
	expired sessions              -> 410
	exhausted optimistic retries  -> 503
	anything else                 -> 500 (logged, detail withheld)
*/
package middleware
