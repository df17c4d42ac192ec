// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package broadcast implements the notification collaborator: websocket
fanout of engine events to the subscribers of each game.

Topics are scoped per game (round-update, round-complete, timer-tick,
game-over) and every payload carries enough state for a client to render
tallies, remaining time, and outcomes without further queries.

Delivery is best-effort. Broadcast never blocks: a subscriber whose send
buffer is full loses the message and resynchronizes from the next
round-update.
*/
package broadcast
