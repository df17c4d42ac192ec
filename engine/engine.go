// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"math/rand"
	"sync"
	"time"

	"mafia-night/store"
)

// Broadcaster is the notification collaborator: fire-and-forget fanout of
// a payload to every subscriber of a game's topic. Delivery is not
// guaranteed and failures never block engine operations.
type Broadcaster interface {
	Broadcast(gameID, topic string, payload interface{})
}

// Bounded retry count for optimistic-version writes.
const writeRetries = 3

// Engine owns game lifecycle and voting-session operations. It keeps no
// game state in memory; everything lives in the store, so concurrent
// requests and the background timer all converge on the same rows.
type Engine struct {
	store *store.Store
	hub   Broadcaster

	now func() time.Time

	// rng backs role shuffling and the night tie-break. *rand.Rand is not
	// goroutine-safe; rngMu serializes access.
	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(st *store.Store, hub Broadcaster) *Engine {
	return &Engine{
		store: st,
		hub:   hub,
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e *Engine) shuffle(ids []string) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
