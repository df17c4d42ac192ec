package models

import "time"

// Game status constants
const (
	GameInProgress = "in_progress"
	GameFinished   = "finished"
)

// Phase constants
const (
	PhaseNightVote = "night_vote"
	PhaseDayVote   = "day_vote"
	// PhaseDayDiscussion is reserved for a future discussion stage; the
	// engine never schedules it.
	PhaseDayDiscussion = "day_discussion"
	PhaseGameOver      = "game_over"
)

// Session status constants
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionExpired   = "expired"
)

// Role constants
const (
	RoleMafia   = "mafia"
	RoleCitizen = "citizen"
)

// Winner constants
const (
	WinnerMafia    = "mafia"
	WinnerCitizens = "citizens"
)

// VotingPhase reports whether the phase is one the engine runs a round in.
func VotingPhase(phase string) bool {
	return phase == PhaseNightVote || phase == PhaseDayVote
}

// OppositePhase returns the voting phase that follows the given one.
// The day number increments when wrapping from day back to night; that
// bookkeeping lives with the caller.
func OppositePhase(phase string) string {
	if phase == PhaseNightVote {
		return PhaseDayVote
	}
	return PhaseNightVote
}

// Request types

type StartGameRequest struct {
	RoomID        string   `json:"room_id"`
	PlayerUserIDs []string `json:"player_user_ids"`
	MafiaCount    int      `json:"mafia_count"`
	RoundSeconds  int      `json:"round_seconds,omitempty"`
}

type CastVoteRequest struct {
	VoterID      string `json:"voter_id"`
	TargetUserID string `json:"target_user_id"`
}

// Response types

type StartGameResponse struct {
	Game    Game          `json:"game"`
	Session VotingSession `json:"session"`
}

type CastVoteResponse struct {
	SessionID           string `json:"session_id"`
	Status              string `json:"status"`
	VotesReceived       int    `json:"votes_received"`
	TotalEligibleVoters int    `json:"total_eligible_voters"`
}

type GameStateResponse struct {
	Game    Game           `json:"game"`
	Players []PlayerPublic `json:"players"`
	Session *VotingSession `json:"session,omitempty"`
}

type SessionResultsResponse struct {
	Session VotingSession `json:"session"`
	Results []TargetTally `json:"results"`
	// Votes carries individual ballots for public (day) sessions only.
	Votes []VotePublic `json:"votes,omitempty"`
}

type EndGameResponse struct {
	Game Game `json:"game"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type Game struct {
	ID           string     `json:"id"`
	RoomID       string     `json:"room_id"`
	Status       string     `json:"status"`
	CurrentPhase string     `json:"current_phase"`
	CurrentDay   int        `json:"current_day"`
	RoundSeconds int        `json:"round_seconds"`
	Winner       *string    `json:"winner,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

type Player struct {
	ID      string `json:"id"`
	GameID  string `json:"game_id"`
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	Alive   bool   `json:"alive"`
	Version int    `json:"-"`
}

// PlayerPublic is the client-facing view of a player. Role is withheld
// while the game is running.
type PlayerPublic struct {
	UserID string `json:"user_id"`
	Alive  bool   `json:"alive"`
	Role   string `json:"role,omitempty"`
}

type VotingSession struct {
	ID                  string    `json:"id"`
	GameID              string    `json:"game_id"`
	Phase               string    `json:"phase"`
	DayNumber           int       `json:"day_number"`
	Status              string    `json:"status"`
	StartedAt           time.Time `json:"started_at"`
	EndsAt              time.Time `json:"ends_at"`
	TotalEligibleVoters int       `json:"total_eligible_voters"`
	VotesReceived       int       `json:"votes_received"`
	ResultUserID        *string   `json:"result_user_id,omitempty"`
	IsTie               bool      `json:"is_tie"`
	Version             int       `json:"-"`
}

type Vote struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	GameID       string    `json:"game_id"`
	Phase        string    `json:"phase"`
	DayNumber    int       `json:"day_number"`
	VoterID      string    `json:"voter_id"`
	TargetUserID string    `json:"target_user_id"`
	IsValid      bool      `json:"is_valid"`
	VotedAt      time.Time `json:"voted_at"`
}

// VotePublic exposes a ballot in day-phase results.
type VotePublic struct {
	VoterID      string `json:"voter_id"`
	TargetUserID string `json:"target_user_id"`
}

// VoteResult is the cached per-target aggregate for a session.
type VoteResult struct {
	SessionID      string `json:"session_id"`
	TargetUserID   string `json:"target_user_id"`
	VoteCount      int    `json:"vote_count"`
	MafiaVoteCount int    `json:"mafia_vote_count"`
}

// TargetTally is the phase-visible count for one target. For day sessions
// Count is the full vote count; for night sessions it is the mafia-only
// count.
type TargetTally struct {
	TargetUserID string `json:"target_user_id"`
	Count        int    `json:"count"`
}

// Broadcast topics, scoped per game.
const (
	TopicRoundUpdate   = "round-update"
	TopicRoundComplete = "round-complete"
	TopicTimerTick     = "timer-tick"
	TopicGameOver      = "game-over"
)

// Broadcast payloads

type RoundUpdatePayload struct {
	SessionID           string        `json:"session_id"`
	Phase               string        `json:"phase"`
	DayNumber           int           `json:"day_number"`
	VotesReceived       int           `json:"votes_received"`
	TotalEligibleVoters int           `json:"total_eligible_voters"`
	EndsAt              time.Time     `json:"ends_at"`
	Tallies             []TargetTally `json:"tallies,omitempty"`
}

type RoundCompletePayload struct {
	SessionID        string        `json:"session_id"`
	Phase            string        `json:"phase"`
	DayNumber        int           `json:"day_number"`
	Outcome          string        `json:"outcome"`
	EliminatedUserID *string       `json:"eliminated_user_id,omitempty"`
	IsTie            bool          `json:"is_tie"`
	Candidates       []string      `json:"candidates,omitempty"`
	Tallies          []TargetTally `json:"tallies,omitempty"`
}

type TimerTickPayload struct {
	SessionID        string `json:"session_id"`
	Phase            string `json:"phase"`
	RemainingSeconds int    `json:"remaining_seconds"`
	EndsIn           string `json:"ends_in"`
}

type GameOverPayload struct {
	GameID    string `json:"game_id"`
	Winner    string `json:"winner,omitempty"`
	DayNumber int    `json:"day_number"`
}
