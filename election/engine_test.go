package election_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ziglaser/votekit/ballot"
	"github.com/ziglaser/votekit/election"
)

func mustProfile(t *testing.T, declared []ballot.Candidate, ballots []ballot.Ballot) *ballot.Profile {
	t.Helper()
	p, err := ballot.NewProfile(declared, ballots)
	require.NoError(t, err)
	return p
}

// singleSeatProfile is the worked single-seat example: 7 total weight, Droop
// quota 4, first round totals X=3 Y=2 Z=2.
func singleSeatProfile(t *testing.T) *ballot.Profile {
	return mustProfile(t, []ballot.Candidate{"X", "Y", "Z"}, []ballot.Ballot{
		{Ranking: ballot.Linear("X", "Y", "Z"), Weight: 3},
		{Ranking: ballot.Linear("Y", "X", "Z"), Weight: 2},
		{Ranking: ballot.Linear("Z", "Y", "X"), Weight: 2},
	})
}

func TestSingleSeatEliminationAndElection(t *testing.T) {
	// The round-1 elimination tie between Y and Z (2 votes each) is
	// resolved by a manual policy ranking Z first for elimination, so Z's
	// two ballots transfer to Y.
	engine, err := election.NewEngine(
		singleSeatProfile(t), 1,
		election.Droop{},
		election.NewManualTieBreak([]ballot.Candidate{"Z", "Y", "X"}),
	)
	require.NoError(t, err)
	result, err := engine.Run()
	require.NoError(t, err)

	require.Equal(t, []election.Placement{{Candidate: "Y", Round: 2}}, result.Elected)
	require.Equal(t, []election.Placement{{Candidate: "Z", Round: 1}}, result.Eliminated)
	require.Equal(t, election.StatusElected, result.Status("Y"))
	require.Equal(t, election.StatusEliminated, result.Status("Z"))
	require.Equal(t, election.StatusHopeful, result.Status("X"))
	require.Equal(t, 0, result.UnfilledSeats)
	require.NotEmpty(t, result.RunID)

	require.Len(t, result.Rounds, 2)
	require.Equal(t, 4.0, result.Rounds[0].Quota)
	require.Equal(t, 3.0, result.Rounds[0].FirstPlace["X"])
	require.Equal(t, 2.0, result.Rounds[0].FirstPlace["Y"])
	require.Equal(t, 2.0, result.Rounds[0].FirstPlace["Z"])
	require.Equal(t, 4.0, result.Rounds[1].FirstPlace["Y"])
}

func TestPhaseTransitions(t *testing.T) {
	engine, err := election.NewEngine(
		singleSeatProfile(t), 1,
		election.Droop{},
		election.NewManualTieBreak([]ballot.Candidate{"Z", "Y", "X"}),
	)
	require.NoError(t, err)
	require.Equal(t, election.Initialized, engine.State().Phase())

	_, err = engine.Result()
	require.Error(t, err) // no result before termination

	require.NoError(t, engine.Step()) // round 1: nobody at quota, Z picked
	require.Equal(t, election.Eliminating, engine.State().Phase())
	require.NoError(t, engine.Step()) // Z removed, ballots transfer
	require.Equal(t, election.RoundInProgress, engine.State().Phase())
	require.NoError(t, engine.Step()) // round 2: Y reaches quota
	require.Equal(t, election.SurplusTransferring, engine.State().Phase())
	require.NoError(t, engine.Step()) // surplus moved off Y
	require.Equal(t, election.RoundInProgress, engine.State().Phase())
	require.NoError(t, engine.Step()) // no seats left
	require.Equal(t, election.Terminated, engine.State().Phase())

	_, err = engine.Result()
	require.NoError(t, err)
}

func TestSurplusTransferConservesWeight(t *testing.T) {
	// A polls 6 against a quota of 4: surplus 2 transfers to B at factor
	// 1/3, and exactly quota weight stays behind with A.
	profile := mustProfile(t, []ballot.Candidate{"A", "B", "C"}, []ballot.Ballot{
		{Ranking: ballot.Linear("A", "B", "C"), Weight: 6},
		{Ranking: ballot.Linear("B", "C", "A"), Weight: 2},
		{Ranking: ballot.Linear("C", "B", "A"), Weight: 2},
	})
	engine, err := election.NewEngine(profile, 2, election.Droop{}, election.DeclaredOrder{})
	require.NoError(t, err)
	result, err := engine.Run()
	require.NoError(t, err)

	require.Equal(t, []election.Placement{
		{Candidate: "A", Round: 1},
		{Candidate: "B", Round: 2},
	}, result.Elected)

	require.Len(t, result.Rounds, 2)
	round2 := result.Rounds[1]
	total := 0.0
	for _, w := range round2.FirstPlace {
		total += w
	}
	// weight moved off A's ballots equals the surplus, so the round-2
	// total is the original 10 minus the quota of 4
	require.InDelta(t, 6.0, total, 1e-9)
	require.InDelta(t, 4.0, round2.FirstPlace["B"], 1e-9)
}

func TestSurplusTransferWithTiedFirstGroup(t *testing.T) {
	// A polls 6 first-place votes (4 sole-first plus a 2-vote share of the
	// tied ballot) against a quota of 5. Only A's per-capita share of the
	// tied ballot is scaled by the 1/6 transfer factor; B's co-ranked
	// share of 2 passes through untouched.
	profile := mustProfile(t, []ballot.Candidate{"A", "B", "C"}, []ballot.Ballot{
		{Ranking: ballot.Ranking{{"A", "B"}, {"C"}}, Weight: 4},
		{Ranking: ballot.Linear("A"), Weight: 4},
	})
	engine, err := election.NewEngine(profile, 1, election.Droop{}, election.DeclaredOrder{})
	require.NoError(t, err)

	require.NoError(t, engine.Step()) // round 1: A reaches the quota of 5
	require.Equal(t, election.SurplusTransferring, engine.State().Phase())
	require.Equal(t, 5.0, engine.State().Quota())
	require.Equal(t, 6.0, engine.State().FirstPlaceWeight("A"))

	require.NoError(t, engine.Step()) // surplus moved off A
	after := engine.State().Profile()

	// the tied ballot keeps B's share of 2 plus A's transferred share of
	// 4/2 * 1/6; the sole-A ballot's transferred 2/3 exhausts entirely
	require.InDelta(t, 2.0+1.0/3.0, after.Weight(ballot.Linear("B", "C")), 1e-9)
	require.InDelta(t, 2.0+1.0/3.0, after.Total(), 1e-9)

	require.NoError(t, engine.Step())
	require.Equal(t, election.Terminated, engine.State().Phase())
	result, err := engine.Result()
	require.NoError(t, err)
	require.Equal(t, []election.Placement{{Candidate: "A", Round: 1}}, result.Elected)
}

func TestElectsAllRemainingWhenHopefulsEqualSeats(t *testing.T) {
	// Nobody reaches the quota of 1, and the two hopefuls exactly fill the
	// two seats. The tie at 0.5 votes each is broken by declared order.
	profile := mustProfile(t, []ballot.Candidate{"A", "B"}, []ballot.Ballot{
		{Ranking: ballot.Linear("A"), Weight: 0.5},
		{Ranking: ballot.Linear("B"), Weight: 0.5},
	})
	engine, err := election.NewEngine(profile, 2, election.Droop{}, election.DeclaredOrder{})
	require.NoError(t, err)
	result, err := engine.Run()
	require.NoError(t, err)

	require.Equal(t, []election.Placement{
		{Candidate: "A", Round: 1},
		{Candidate: "B", Round: 1},
	}, result.Elected)
	require.Empty(t, result.Eliminated)
	require.Equal(t, 0, result.UnfilledSeats)
}

func TestReportsUnfilledSeats(t *testing.T) {
	// Only one ballot exists: A is elected on it, the ballot exhausts, and
	// the second seat can never be filled. That is a reported outcome, not
	// an error.
	profile := mustProfile(t, []ballot.Candidate{"A", "B", "C"}, []ballot.Ballot{
		{Ranking: ballot.Linear("A"), Weight: 1},
	})
	engine, err := election.NewEngine(profile, 2, election.Droop{}, election.DeclaredOrder{})
	require.NoError(t, err)
	result, err := engine.Run()
	require.NoError(t, err)

	require.Equal(t, []election.Placement{{Candidate: "A", Round: 1}}, result.Elected)
	require.Equal(t, 1, result.UnfilledSeats)
	require.Equal(t, election.StatusHopeful, result.Status("B"))
	require.Equal(t, election.StatusHopeful, result.Status("C"))
}

func TestElectedAndEliminatedAreDisjoint(t *testing.T) {
	engine, err := election.NewEngine(
		singleSeatProfile(t), 1,
		election.Droop{},
		election.NewSeededTieBreak(7),
	)
	require.NoError(t, err)
	result, err := engine.Run()
	require.NoError(t, err)

	seen := make(map[ballot.Candidate]bool)
	for _, p := range result.Elected {
		seen[p.Candidate] = true
	}
	for _, p := range result.Eliminated {
		require.False(t, seen[p.Candidate], "candidate %q both elected and eliminated", p.Candidate)
	}
	require.Len(t, result.Elected, 1)
}

func TestRejectsInsufficientCandidates(t *testing.T) {
	profile := mustProfile(t, []ballot.Candidate{"A", "B"}, []ballot.Ballot{
		{Ranking: ballot.Linear("A"), Weight: 1},
	})
	_, err := election.NewEngine(profile, 3, election.Droop{}, election.DeclaredOrder{})
	require.ErrorIs(t, err, election.ErrInsufficientCandidates)
}

func TestRejectsNonPositiveSeats(t *testing.T) {
	profile := mustProfile(t, []ballot.Candidate{"A", "B"}, []ballot.Ballot{
		{Ranking: ballot.Linear("A"), Weight: 1},
	})
	_, err := election.NewEngine(profile, 0, election.Droop{}, election.DeclaredOrder{})
	require.ErrorIs(t, err, election.ErrInvalidQuota)
}

func TestUnresolvedTieAbortsTabulation(t *testing.T) {
	// The manual policy knows nothing about the tied candidates, so the
	// round-1 elimination tie cannot be resolved and the whole tabulation
	// fails with no partial result.
	engine, err := election.NewEngine(
		singleSeatProfile(t), 1,
		election.Droop{},
		election.NewManualTieBreak([]ballot.Candidate{"X"}),
	)
	require.NoError(t, err)
	result, err := engine.Run()
	require.ErrorIs(t, err, election.ErrUnresolvedTie)
	require.Nil(t, result)
}
