package election

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/ziglaser/votekit/ballot"
)

// ErrUnresolvedTie is returned when a tie-break policy cannot select a
// candidate. It is fatal to a running tabulation: the engine never guesses
// a resolution on its own.
var ErrUnresolvedTie = errors.New("unresolved tie")

// Action tells a tie-break policy what the engine is about to do with the
// candidate it selects.
type Action uint8

const (
	// Elect marks a tie among candidates competing for election; the
	// selected candidate is elected first.
	Elect Action = iota + 1
	// Eliminate marks a tie among candidates with the lowest support; the
	// selected candidate is eliminated.
	Eliminate
)

func (a Action) String() string {
	switch a {
	case Elect:
		return "elect"
	case Eliminate:
		return "eliminate"
	default:
		return "unknown"
	}
}

// TieBreak resolves ties in vote totals during tabulation. Break must return
// exactly one member of the tied set: the candidate the pending action is
// applied to. Policies may consult the read-only election state but must not
// mutate it. A policy that cannot decide returns ErrUnresolvedTie.
type TieBreak interface {
	Break(tied []ballot.Candidate, action Action, state *State) (ballot.Candidate, error)
}

// SeededTieBreak selects uniformly at random among the tied candidates using
// a seeded generator, so a whole simulation run is reproducible from its
// seed. Selection is independent of the order the engine lists the tied
// candidates in.
type SeededTieBreak struct {
	rng *rand.Rand
}

func NewSeededTieBreak(seed int64) *SeededTieBreak {
	return &SeededTieBreak{rng: rand.New(rand.NewSource(seed))}
}

func (t *SeededTieBreak) Break(tied []ballot.Candidate, action Action, state *State) (ballot.Candidate, error) {
	if len(tied) == 0 {
		return "", fmt.Errorf("%w: empty tied set", ErrUnresolvedTie)
	}
	sorted := make([]ballot.Candidate, len(tied))
	copy(sorted, tied)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[t.rng.Intn(len(sorted))], nil
}

// DeclaredOrder selects the tied candidate that appears earliest in the
// profile's declared candidate order. Fully deterministic and needs no
// external data.
type DeclaredOrder struct{}

func (DeclaredOrder) Break(tied []ballot.Candidate, action Action, state *State) (ballot.Candidate, error) {
	if len(tied) == 0 {
		return "", fmt.Errorf("%w: empty tied set", ErrUnresolvedTie)
	}
	tiedSet := make(map[ballot.Candidate]bool, len(tied))
	for _, c := range tied {
		tiedSet[c] = true
	}
	for _, c := range state.DeclaredOrder() {
		if tiedSet[c] {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: no tied candidate found in declared order", ErrUnresolvedTie)
}

// ManualTieBreak delegates to an externally supplied ranking over all
// candidates, selecting the tied candidate ranked earliest. Used for
// auditability: the resolution order is fixed up front and recorded by the
// caller. Break fails with ErrUnresolvedTie if any tied candidate is absent
// from the supplied ranking.
type ManualTieBreak struct {
	position map[ballot.Candidate]int
}

func NewManualTieBreak(ranking []ballot.Candidate) *ManualTieBreak {
	position := make(map[ballot.Candidate]int, len(ranking))
	for i, c := range ranking {
		if _, ok := position[c]; !ok {
			position[c] = i
		}
	}
	return &ManualTieBreak{position: position}
}

func (t *ManualTieBreak) Break(tied []ballot.Candidate, action Action, state *State) (ballot.Candidate, error) {
	if len(tied) == 0 {
		return "", fmt.Errorf("%w: empty tied set", ErrUnresolvedTie)
	}
	best := ballot.Candidate("")
	bestPos := -1
	for _, c := range tied {
		pos, ok := t.position[c]
		if !ok {
			return "", fmt.Errorf("%w: candidate %q missing from manual ranking", ErrUnresolvedTie, c)
		}
		if bestPos == -1 || pos < bestPos {
			best, bestPos = c, pos
		}
	}
	return best, nil
}
