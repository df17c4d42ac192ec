// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"testing"

	"mafia-night/broadcast"
	"mafia-night/engine"
	"mafia-night/store"
	"mafia-night/testutil"
)

// setupEngine wires a real engine over a fresh test database
func setupEngine(t *testing.T) (*engine.Engine, *broadcast.Hub, *sql.DB) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	hub := broadcast.NewHub()
	eng := engine.New(store.New(conn), hub)
	return eng, hub, conn
}
