// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event is the wire envelope for every broadcast message.
type Event struct {
	Topic   string      `json:"topic"`
	GameID  string      `json:"game_id"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub fans events out to the websocket subscribers of each game.
// Broadcast is fire-and-forget: no delivery guarantee, and a slow client
// never blocks the caller.
type Hub struct {
	mu    sync.RWMutex
	games map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{games: make(map[string]map[*Client]bool)}
}

// Broadcast sends an event to every subscriber of the game. Implements
// engine.Broadcaster.
func (h *Hub) Broadcast(gameID, topic string, payload interface{}) {
	data, err := json.Marshal(Event{
		Topic:   topic,
		GameID:  gameID,
		At:      time.Now(),
		Payload: payload,
	})
	if err != nil {
		slog.Error("broadcast marshal failed", "topic", topic, "game_id", gameID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.games[gameID] {
		client.enqueue(data)
	}
}

// SubscriberCount returns the number of connected subscribers for a game.
func (h *Hub) SubscriberCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

func (h *Hub) register(gameID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.games[gameID] == nil {
		h.games[gameID] = make(map[*Client]bool)
	}
	h.games[gameID][c] = true
}

func (h *Hub) unregister(gameID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.games[gameID]
	if !ok || !subs[c] {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.games, gameID)
	}
	// Safe to close here: Broadcast enqueues only under the read lock, so
	// no send can be in flight once the write lock is held.
	close(c.send)
}
