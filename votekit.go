package votekit

import (
	"github.com/ziglaser/votekit/ballot"
	"github.com/ziglaser/votekit/distance"
	"github.com/ziglaser/votekit/election"
)

// Tabulate runs a single-transferable-vote count over the profile and
// returns the immutable result. It is a convenience wrapper over
// election.NewEngine followed by Run; use the engine directly to observe
// individual round transitions or to attach a logger.
func Tabulate(profile *ballot.Profile, seats int, quota election.Quota, tiebreak election.TieBreak) (*election.Result, error) {
	engine, err := election.NewEngine(profile, seats, quota, tiebreak)
	if err != nil {
		return nil, err
	}
	return engine.Run()
}

// Distance returns the optimal-transport distance between two ballot
// profiles under the given ranking cost model, together with the transport
// plan achieving it. It uses the exact solver; use distance.NewEngine with
// distance.WithSolver to pick a different backend.
func Distance(a, b *ballot.Profile, model distance.CostModel) (float64, *distance.Plan, error) {
	return distance.NewEngine(model).Distance(a, b)
}
