// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"database/sql"
	"math/rand"
	"sync"
	"testing"

	"mafia-night/store"
	"mafia-night/testutil"
)

// recordingHub captures broadcasts for assertions
type recordingHub struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	GameID  string
	Topic   string
	Payload interface{}
}

func (h *recordingHub) Broadcast(gameID, topic string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, recordedEvent{GameID: gameID, Topic: topic, Payload: payload})
}

func (h *recordingHub) byTopic(topic string) []recordedEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []recordedEvent
	for _, e := range h.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

// newTestEngine returns an engine over a fresh test database with a seeded
// rng so tie-breaks are reproducible
func newTestEngine(t *testing.T) (*Engine, *recordingHub, *sql.DB) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	hub := &recordingHub{}
	eng := New(store.New(conn), hub)
	eng.rng = rand.New(rand.NewSource(7))
	return eng, hub, conn
}

func TestShuffle_PreservesElements(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	ids := []string{"a", "b", "c", "d", "e"}
	shuffled := make([]string, len(ids))
	copy(shuffled, ids)
	eng.shuffle(shuffled)

	seen := map[string]bool{}
	for _, id := range shuffled {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Errorf("Shuffle lost element %s", id)
		}
	}
}
