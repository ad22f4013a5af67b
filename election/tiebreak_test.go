package election_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ziglaser/votekit/ballot"
	"github.com/ziglaser/votekit/election"
)

// stateFor builds an election state over the given declared candidate order,
// for feeding to tie-break policies directly.
func stateFor(t *testing.T, declared ...ballot.Candidate) *election.State {
	t.Helper()
	p, err := ballot.NewProfile(declared, []ballot.Ballot{
		{Ranking: ballot.Linear(declared[0]), Weight: 1},
	})
	require.NoError(t, err)
	engine, err := election.NewEngine(p, 1, election.Droop{}, election.DeclaredOrder{})
	require.NoError(t, err)
	return engine.State()
}

func TestSeededTieBreakIsDeterministic(t *testing.T) {
	state := stateFor(t, "X", "Y", "Z")
	tied := []ballot.Candidate{"Y", "Z"}

	first, err := election.NewSeededTieBreak(42).Break(tied, election.Eliminate, state)
	require.NoError(t, err)
	second, err := election.NewSeededTieBreak(42).Break(tied, election.Eliminate, state)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Contains(t, tied, first)

	// listing order of the tied set must not change the pick
	reordered, err := election.NewSeededTieBreak(42).Break([]ballot.Candidate{"Z", "Y"}, election.Eliminate, state)
	require.NoError(t, err)
	require.Equal(t, first, reordered)
}

func TestDeclaredOrderPicksEarliestDeclared(t *testing.T) {
	state := stateFor(t, "X", "Y", "Z")
	pick, err := election.DeclaredOrder{}.Break([]ballot.Candidate{"Z", "Y"}, election.Elect, state)
	require.NoError(t, err)
	require.Equal(t, ballot.Candidate("Y"), pick)
}

func TestManualTieBreakFollowsSuppliedRanking(t *testing.T) {
	state := stateFor(t, "X", "Y", "Z")
	manual := election.NewManualTieBreak([]ballot.Candidate{"Z", "Y", "X"})
	pick, err := manual.Break([]ballot.Candidate{"Y", "Z"}, election.Eliminate, state)
	require.NoError(t, err)
	require.Equal(t, ballot.Candidate("Z"), pick)
}

func TestManualTieBreakFailsOnMissingCandidate(t *testing.T) {
	state := stateFor(t, "X", "Y", "Z")
	manual := election.NewManualTieBreak([]ballot.Candidate{"X"})
	_, err := manual.Break([]ballot.Candidate{"Y", "Z"}, election.Eliminate, state)
	require.ErrorIs(t, err, election.ErrUnresolvedTie)
}
