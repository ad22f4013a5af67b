package election

import (
	"sort"

	"github.com/ziglaser/votekit/ballot"
)

// Tabulation moves through five phases. Each Step of the engine performs the
// work of the current phase and transitions to the next.
const (
	// Initialized: the engine has been constructed but no round has run.
	Initialized Phase = iota + 1
	// RoundInProgress: quota and first-place weights are recomputed and the
	// round's outcome is decided (election, elimination or termination).
	RoundInProgress
	// SurplusTransferring: an elected candidate's surplus is redistributed
	// to the next continuing preference on their ballots.
	SurplusTransferring
	// Eliminating: the weakest hopeful is removed and their ballots
	// transfer to the next continuing preference or exhaust.
	Eliminating
	// Terminated: contention has ended and the result is available.
	Terminated
)

type Phase uint8

func (p Phase) String() string {
	switch p {
	case Initialized:
		return "initialized"
	case RoundInProgress:
		return "round-in-progress"
	case SurplusTransferring:
		return "surplus-transferring"
	case Eliminating:
		return "eliminating"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// State is the mutable round-by-round state of one tabulation. It is owned
// exclusively by the engine that created it; tie-break policies receive it
// read-only through its accessors.
type State struct {
	round     int
	phase     Phase
	profile   *ballot.Profile
	seatsLeft int
	quota     float64

	hopefuls   map[ballot.Candidate]bool
	elected    []Placement
	eliminated []Placement

	firstPlace map[ballot.Candidate]float64

	// pending is the candidate the next SurplusTransferring or Eliminating
	// step applies to.
	pending ballot.Candidate
}

func newState(profile *ballot.Profile, seats int) *State {
	hopefuls := make(map[ballot.Candidate]bool)
	for _, c := range profile.Candidates() {
		hopefuls[c] = true
	}
	return &State{
		phase:     Initialized,
		profile:   profile,
		seatsLeft: seats,
		hopefuls:  hopefuls,
	}
}

// Round returns the current round number, starting at 1 for the first round.
func (s *State) Round() int {
	return s.round
}

// Phase returns the current phase of the tabulation.
func (s *State) Phase() Phase {
	return s.phase
}

// SeatsRemaining returns the number of seats still to fill.
func (s *State) SeatsRemaining() int {
	return s.seatsLeft
}

// Quota returns the threshold computed for the current round.
func (s *State) Quota() float64 {
	return s.quota
}

// Profile returns the current (possibly restricted and reweighted) profile.
func (s *State) Profile() *ballot.Profile {
	return s.profile
}

// DeclaredOrder returns the profile's declared candidate order.
func (s *State) DeclaredOrder() []ballot.Candidate {
	return s.profile.Candidates()
}

// Hopefuls returns the candidates still in contention, sorted by identifier
// for determinism.
func (s *State) Hopefuls() []ballot.Candidate {
	out := make([]ballot.Candidate, 0, len(s.hopefuls))
	for c := range s.hopefuls {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FirstPlaceWeight returns the candidate's first-place support as of the
// last RoundInProgress step, 0 for candidates without support.
func (s *State) FirstPlaceWeight(c ballot.Candidate) float64 {
	return s.firstPlace[c]
}
