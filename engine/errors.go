// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "errors"

// Engine errors. Handlers map these to HTTP statuses; none of them carries
// internal detail.
var (
	// Configuration errors: rejected before any state mutation.
	ErrInvalidConfiguration = errors.New("invalid game configuration")

	// State-conflict errors: the request is illegal right now, but the
	// system self-heals and a later legal request succeeds.
	ErrConflictingActiveGame = errors.New("room already has a game in progress")
	ErrSessionAlreadyActive  = errors.New("voting session already active for this round")
	ErrSessionNotActive      = errors.New("voting session is not active")
	ErrSessionExpired        = errors.New("voting session deadline has passed")
	ErrDuplicateVote         = errors.New("voter already has a vote in this session")
	ErrGameFinished          = errors.New("game is already finished")
	ErrVoterDead             = errors.New("dead players cannot vote")
	ErrTargetDead            = errors.New("cannot vote for a dead player")
	ErrNoEligibleVoters      = errors.New("no eligible voters for this round")

	// Not-found errors.
	ErrGameNotFound    = errors.New("game not found")
	ErrSessionNotFound = errors.New("voting session not found")
	ErrVoterNotInGame  = errors.New("voter is not a player in this game")
	ErrTargetNotInGame = errors.New("vote target is not a player in this game")

	// ErrConflict surfaces an exhausted optimistic-write retry loop.
	// Transient: the caller may retry the whole operation.
	ErrConflict = errors.New("concurrent update conflict, retry")
)
