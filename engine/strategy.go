// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"math/rand"

	"mafia-night/models"
)

// OutcomeKind tags a resolved round result.
type OutcomeKind string

const (
	OutcomeElimination          OutcomeKind = "elimination"
	OutcomeTieNoElimination     OutcomeKind = "tie_no_elimination"
	OutcomeTieRandomElimination OutcomeKind = "tie_random_elimination"
	OutcomeNoElimination        OutcomeKind = "no_elimination"
)

// Outcome is the tagged result of resolving a voting session.
// TargetUserID is set for OutcomeElimination and OutcomeTieRandomElimination;
// Candidates carries the tied targets for both tie kinds.
type Outcome struct {
	Kind         OutcomeKind
	TargetUserID string
	Candidates   []string
}

// Strategy encapsulates the per-phase voting policy: who may vote, which
// ballots count, how ties resolve, and whether voter identities are public.
// Exactly two variants exist; the rules are fixed by game design, so there
// is no registry or plugin surface.
type Strategy interface {
	// ValidateVote checks phase-specific eligibility of an accepted ballot.
	ValidateVote(voter, target *models.Player) error

	// CountedVotes returns the number of ballots that count toward the
	// result for one target.
	CountedVotes(r models.VoteResult) int

	// CountMafiaVotes returns the total mafia ballots across all targets.
	// Always zero for the day phase.
	CountMafiaVotes(results []models.VoteResult) int

	// DetermineResult resolves the round from the aggregated counts.
	// rng backs the night tie-break; the day strategy never touches it.
	DetermineResult(results []models.VoteResult, rng *rand.Rand) Outcome

	// VotesArePublic reports whether voter identities are exposed in
	// results and broadcasts.
	VotesArePublic() bool
}

// ForPhase returns the strategy for a session's phase.
func ForPhase(phase string) Strategy {
	if phase == models.PhaseNightVote {
		return nightStrategy{}
	}
	return dayStrategy{}
}

// Both phases share the same eligibility rule: any alive player of the game
// may cast a ballot, and the target must be alive. The phases differ only
// in counting and tie policy.
func validateAlive(voter, target *models.Player) error {
	if !voter.Alive {
		return ErrVoterDead
	}
	if !target.Alive {
		return ErrTargetDead
	}
	return nil
}

// topTargets finds the maximum counted votes and every target holding it.
// Targets with zero counted votes never win a round.
func topTargets(results []models.VoteResult, counted func(models.VoteResult) int) (int, []string) {
	max := 0
	var tied []string
	for _, r := range results {
		c := counted(r)
		if c == 0 {
			continue
		}
		switch {
		case c > max:
			max = c
			tied = tied[:0]
			tied = append(tied, r.TargetUserID)
		case c == max:
			tied = append(tied, r.TargetUserID)
		}
	}
	return max, tied
}

// dayStrategy: everyone's ballot counts, votes are public, and a tie at the
// top saves everyone.
type dayStrategy struct{}

func (dayStrategy) ValidateVote(voter, target *models.Player) error {
	return validateAlive(voter, target)
}

func (dayStrategy) CountedVotes(r models.VoteResult) int { return r.VoteCount }

func (dayStrategy) CountMafiaVotes([]models.VoteResult) int { return 0 }

func (dayStrategy) VotesArePublic() bool { return true }

func (dayStrategy) DetermineResult(results []models.VoteResult, _ *rand.Rand) Outcome {
	max, tied := topTargets(results, dayStrategy{}.CountedVotes)
	if max == 0 {
		return Outcome{Kind: OutcomeNoElimination}
	}
	if len(tied) == 1 {
		return Outcome{Kind: OutcomeElimination, TargetUserID: tied[0]}
	}
	// Day ties favor survival.
	return Outcome{Kind: OutcomeTieNoElimination, Candidates: tied}
}

// nightStrategy: everyone may cast a ballot (citizen ballots are accepted
// decoys), but only mafia ballots count; votes are secret, and a tie at the
// top still kills one of the tied targets, chosen uniformly at random.
type nightStrategy struct{}

func (nightStrategy) ValidateVote(voter, target *models.Player) error {
	return validateAlive(voter, target)
}

func (nightStrategy) CountedVotes(r models.VoteResult) int { return r.MafiaVoteCount }

func (nightStrategy) CountMafiaVotes(results []models.VoteResult) int {
	total := 0
	for _, r := range results {
		total += r.MafiaVoteCount
	}
	return total
}

func (nightStrategy) VotesArePublic() bool { return false }

func (nightStrategy) DetermineResult(results []models.VoteResult, rng *rand.Rand) Outcome {
	max, tied := topTargets(results, nightStrategy{}.CountedVotes)
	if max == 0 {
		return Outcome{Kind: OutcomeNoElimination}
	}
	if len(tied) == 1 {
		return Outcome{Kind: OutcomeElimination, TargetUserID: tied[0]}
	}
	// Night ties resolve to a death either way.
	target := tied[rng.Intn(len(tied))]
	return Outcome{Kind: OutcomeTieRandomElimination, TargetUserID: target, Candidates: tied}
}
