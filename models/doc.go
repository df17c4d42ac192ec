// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - StartGameRequest: room_id, player_user_ids, mafia_count, round_seconds
  - CastVoteRequest: voter_id, target_user_id

# Response Types

Types for JSON responses:

  - StartGameResponse: game, session
  - CastVoteResponse: session_id, status, votes_received, total_eligible_voters
  - GameStateResponse: game, players, session
  - SessionResultsResponse: session, results, votes (day only)
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Game: game lifecycle state and phase
  - Player: a user's membership and secret role in one game
  - VotingSession: one timed voting round
  - Vote: an individual ballot
  - VoteResult: cached per-target aggregates
  - TargetTally: phase-visible count for one target

# Constants

Game status:

	GameInProgress = "in_progress"
	GameFinished   = "finished"

Phases:

	PhaseNightVote = "night_vote"
	PhaseDayVote   = "day_vote"
	PhaseGameOver  = "game_over"

Session status:

	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionExpired   = "expired"

Roles:

	RoleMafia   = "mafia"
	RoleCitizen = "citizen"

Broadcast topics:

	TopicRoundUpdate   = "round-update"
	TopicRoundComplete = "round-complete"
	TopicTimerTick     = "timer-tick"
	TopicGameOver      = "game-over"
*/
package models
