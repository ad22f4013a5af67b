package election

import "github.com/ziglaser/votekit/ballot"

// Status is the final standing of a candidate once tabulation terminates.
type Status uint8

const (
	// StatusElected: the candidate won a seat.
	StatusElected Status = iota + 1
	// StatusEliminated: the candidate was removed during counting.
	StatusEliminated
	// StatusHopeful: the candidate was still in contention when tabulation
	// terminated. Only occurs when the election could not fill every seat.
	StatusHopeful
)

func (s Status) String() string {
	switch s {
	case StatusElected:
		return "elected"
	case StatusEliminated:
		return "eliminated"
	case StatusHopeful:
		return "hopeful"
	default:
		return "unknown"
	}
}

// Placement records a candidate together with the round in which they were
// elected or eliminated.
type Placement struct {
	Candidate ballot.Candidate
	Round     int
}

// RoundRecord is a snapshot of one round: the quota in force and every
// hopeful's first-place support at the start of the round.
type RoundRecord struct {
	Round      int
	Quota      float64
	FirstPlace map[ballot.Candidate]float64
}

// Result is the immutable outcome of a tabulation. An election legitimately
// may not fill every seat if candidates run out; that is reported through
// UnfilledSeats and StatusHopeful rather than as an error.
type Result struct {
	// RunID uniquely identifies this tabulation, for correlating results
	// across large simulation batches.
	RunID string

	// Elected lists winners in order of election.
	Elected []Placement

	// Eliminated lists removed candidates in order of elimination.
	Eliminated []Placement

	// Rounds holds one snapshot per round, in order.
	Rounds []RoundRecord

	// UnfilledSeats is the number of seats left vacant at termination.
	UnfilledSeats int

	status map[ballot.Candidate]Status
}

// Status returns the final standing of the candidate.
func (r *Result) Status(c ballot.Candidate) Status {
	return r.status[c]
}

// Winners returns just the elected candidates, in order of election.
func (r *Result) Winners() []ballot.Candidate {
	out := make([]ballot.Candidate, len(r.Elected))
	for i, p := range r.Elected {
		out[i] = p.Candidate
	}
	return out
}
