// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Mafia Night API server.

Mafia Night is a round engine for the social-deduction game mafia: it
assigns hidden roles, runs alternating night and day voting rounds with
deadlines, eliminates players, and declares a winner when one faction
prevails.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=mafia.db go run .

Or with flags:

	go run . -p 3525 -t sqlite -d mafia.db

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 3525)
  - DATABASE_TYPE (-t): "sqlite" or "postgres" (default: sqlite)
  - ROUND_SECONDS (-round): Default round duration (default: 60)
  - SWEEP_INTERVAL_MS (-sweep-ms): Deadline sweep cadence (default: 5000)
  - TICK_INTERVAL_MS (-tick-ms): Timer-tick broadcast cadence (default: 1000)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (games, voting, results, websocket)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, engine error mapping
  - engine: Game lifecycle, voting rounds, phase strategies, timers
  - store: SQL persistence with constraint-backed concurrency control
  - broadcast: Websocket hub for live game events
  - models: Domain and request/response types
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
