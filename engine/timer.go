// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"mafia-night/models"
	"mafia-night/store"
)

const (
	// DefaultSweepInterval bounds how far past its deadline a session can
	// linger before the sweep expires it.
	DefaultSweepInterval = 5 * time.Second

	// DefaultTickInterval drives the remaining-time broadcast.
	DefaultTickInterval = 1 * time.Second
)

// Timer runs the two background loops of the voting engine: the expiry
// sweep and the remaining-time broadcast. Both are at-least-once; the
// engine's idempotent complete/expire paths absorb duplicate attempts.
type Timer struct {
	store  *store.Store
	engine *Engine
	hub    Broadcaster

	sweepInterval time.Duration
	tickInterval  time.Duration
	now           func() time.Time
}

func NewTimer(st *store.Store, eng *Engine, hub Broadcaster, sweepInterval, tickInterval time.Duration) *Timer {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	return &Timer{
		store:         st,
		engine:        eng,
		hub:           hub,
		sweepInterval: sweepInterval,
		tickInterval:  tickInterval,
		now:           time.Now,
	}
}

// Run launches both loops. They stop when ctx is cancelled.
func (t *Timer) Run(ctx context.Context) {
	go t.sweepLoop(ctx)
	go t.tickLoop(ctx)
}

func (t *Timer) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sweep(ctx)
		}
	}
}

// Sweep expires every active session past its deadline. One failing
// session is logged and skipped; it never aborts the sweep for the rest.
func (t *Timer) Sweep(ctx context.Context) {
	sessions, err := t.store.ListExpiredActiveSessions(ctx, t.now())
	if err != nil {
		slog.Error("expiry sweep: list failed", "error", err)
		return
	}
	for _, sess := range sessions {
		if err := t.engine.ExpireSession(ctx, sess.ID); err != nil {
			slog.Error("expiry sweep: session failed",
				"session_id", sess.ID,
				"game_id", sess.GameID,
				"error", err,
			)
		}
	}
}

func (t *Timer) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(t.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Tick broadcasts the remaining time of every active session. Purely
// observational - it performs no writes and cannot alter session state.
func (t *Timer) Tick(ctx context.Context) {
	sessions, err := t.store.ListActiveSessions(ctx)
	if err != nil {
		slog.Error("timer tick: list failed", "error", err)
		return
	}
	now := t.now()
	for _, sess := range sessions {
		remaining := int(sess.EndsAt.Sub(now).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		t.hub.Broadcast(sess.GameID, models.TopicTimerTick, models.TimerTickPayload{
			SessionID:        sess.ID,
			Phase:            sess.Phase,
			RemainingSeconds: remaining,
			EndsIn:           humanize.RelTime(sess.EndsAt, now, "overdue", "left"),
		})
	}
}
