package election

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ziglaser/votekit/ballot"
)

// ErrInsufficientCandidates is returned when a tabulation is constructed
// with fewer declared candidates than seats to fill.
var ErrInsufficientCandidates = errors.New("insufficient candidates")

// Engine runs a single-transferable-vote tabulation over a ballot profile.
// It can be viewed as a single threaded state machine stepping through the
// phases declared in state.go: each round recomputes the quota and every
// hopeful's first-place support, then either elects a candidate and
// transfers their surplus, eliminates the weakest hopeful, or terminates.
//
// The engine owns its State exclusively and never mutates the profile it was
// constructed from; restriction and reweighting always derive new profiles.
// Quota computation and tie resolution are delegated to the Quota and
// TieBreak strategies supplied at construction, so new rule families plug in
// without touching the round logic. An unresolved tie or an uncomputable
// quota aborts the whole tabulation: there is no partially correct count.
type Engine struct {
	state    *State
	quota    Quota
	tiebreak TieBreak

	runID  string
	rounds []RoundRecord

	logger zerolog.Logger
}

// Option is a configurable parameter of the engine. If left unset, defaults
// will be used.
type Option func(e *Engine)

// WithLogger sets the logger used to trace round transitions.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine constructs a tabulation over the given profile. It fails with
// ErrInsufficientCandidates if the declared candidate set holds fewer
// candidates than seats, and with ErrInvalidQuota if seats is not positive.
// The profile itself is left untouched for the lifetime of the engine.
func NewEngine(profile *ballot.Profile, seats int, quota Quota, tiebreak TieBreak, opts ...Option) (*Engine, error) {
	if profile == nil {
		return nil, errors.New("profile must not be nil")
	}
	if quota == nil || tiebreak == nil {
		return nil, errors.New("quota and tie-break strategies must not be nil")
	}
	if seats < 1 {
		return nil, fmt.Errorf("%w: seats must be positive, got %d", ErrInvalidQuota, seats)
	}
	if n := len(profile.Candidates()); n < seats {
		return nil, fmt.Errorf("%w: %d candidates for %d seats", ErrInsufficientCandidates, n, seats)
	}
	e := &Engine{
		state:    newState(profile, seats),
		quota:    quota,
		tiebreak: tiebreak,
		runID:    uuid.NewString(),
		logger:   zerolog.New(os.Stdout).Level(zerolog.WarnLevel),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("run_id", e.runID).Logger()
	return e, nil
}

// State exposes the engine's election state for inspection between steps.
func (e *Engine) State() *State {
	return e.state
}

// Run steps the tabulation until it terminates and returns the immutable
// result. Policy failures (ErrInvalidQuota, ErrUnresolvedTie) abort the run
// with no partial result.
func (e *Engine) Run() (*Result, error) {
	for e.state.phase != Terminated {
		if err := e.Step(); err != nil {
			return nil, err
		}
	}
	return e.Result()
}

// Step performs the work of the current phase and transitions to the next.
// Exposed so tests can drive and observe individual transitions.
func (e *Engine) Step() error {
	switch e.state.phase {
	case Initialized, RoundInProgress:
		return e.beginRound()
	case SurplusTransferring:
		return e.transferSurplus()
	case Eliminating:
		return e.eliminate()
	default:
		return errors.New("tabulation already terminated")
	}
}

// Result converts the terminal state into an immutable result. It fails if
// the tabulation has not yet terminated.
func (e *Engine) Result() (*Result, error) {
	if e.state.phase != Terminated {
		return nil, errors.New("tabulation has not terminated")
	}
	s := e.state
	status := make(map[ballot.Candidate]Status, len(s.profile.Candidates()))
	for _, p := range s.elected {
		status[p.Candidate] = StatusElected
	}
	for _, p := range s.eliminated {
		status[p.Candidate] = StatusEliminated
	}
	for c := range s.hopefuls {
		status[c] = StatusHopeful
	}
	return &Result{
		RunID:         e.runID,
		Elected:       append([]Placement(nil), s.elected...),
		Eliminated:    append([]Placement(nil), s.eliminated...),
		Rounds:        append([]RoundRecord(nil), e.rounds...),
		UnfilledSeats: s.seatsLeft,
		status:        status,
	}, nil
}

// beginRound recomputes the quota and first-place weights and decides the
// round's outcome: elect the strongest candidate at or above quota, elect
// everyone when hopefuls exactly fill the remaining seats, terminate when
// support is exhausted, or eliminate the weakest hopeful.
func (e *Engine) beginRound() error {
	s := e.state
	if s.seatsLeft == 0 || len(s.hopefuls) == 0 {
		s.phase = Terminated
		return nil
	}

	s.round++
	total := s.profile.Total()
	quota, err := e.quota.Threshold(total, s.seatsLeft)
	if err != nil {
		return err
	}
	s.quota = quota

	support := s.profile.FirstPlaceWeights()
	firstPlace := make(map[ballot.Candidate]float64, len(s.hopefuls))
	for c := range s.hopefuls {
		firstPlace[c] = support[c]
	}
	s.firstPlace = firstPlace
	e.rounds = append(e.rounds, RoundRecord{
		Round:      s.round,
		Quota:      quota,
		FirstPlace: copyWeights(firstPlace),
	})
	e.logger.Debug().
		Int("round", s.round).
		Float64("total_weight", total).
		Float64("quota", quota).
		Int("seats_left", s.seatsLeft).
		Msg("round begun")

	reached := candidatesAtOrAbove(firstPlace, quota)
	switch {
	case len(reached) > 0:
		winner, err := e.strongest(reached, firstPlace)
		if err != nil {
			return err
		}
		e.elect(winner)
		s.pending = winner
		s.phase = SurplusTransferring

	case len(s.hopefuls) == s.seatsLeft:
		if err := e.electAllRemaining(firstPlace); err != nil {
			return err
		}
		s.phase = Terminated

	case maxWeight(firstPlace) == 0:
		// Every remaining ballot has exhausted: seats stay unfilled, which
		// is a reported outcome rather than an error.
		e.logger.Debug().Int("unfilled_seats", s.seatsLeft).Msg("support exhausted")
		s.phase = Terminated

	default:
		loser, err := e.weakest(firstPlace)
		if err != nil {
			return err
		}
		s.pending = loser
		s.phase = Eliminating
	}
	return nil
}

// transferSurplus redistributes an elected candidate's surplus using the
// Gregory (weighted fractional) method: on every ballot ranking the winner
// first, the winner's per-capita share of the ballot weight is scaled by
// surplus/support while the shares of any candidates tied with the winner
// pass through intact. The winner is then restricted out so the transferred
// mass flows to each ballot's next continuing preference. Ballots with no
// remaining preference exhaust and leave the total weight. The weight
// removed from the count is exactly the quota, never more than the winner's
// first-place support.
func (e *Engine) transferSurplus() error {
	s := e.state
	winner := s.pending
	support := s.firstPlace[winner]
	factor := (support - s.quota) / support
	e.logger.Debug().
		Str("candidate", string(winner)).
		Float64("support", support).
		Float64("surplus", support-s.quota).
		Msg("transferring surplus")

	reweighted := s.profile.Reweighted(func(b ballot.Ballot) float64 {
		if b.Ranking.Position(winner) != 1 {
			return b.Weight
		}
		share := b.Weight / float64(len(b.Ranking[0]))
		return b.Weight - share + share*factor
	})
	s.profile = reweighted.Restrict(winner)
	s.pending = ""
	s.phase = RoundInProgress
	return nil
}

// eliminate removes the pending candidate from contention and restricts the
// profile so their ballots transfer to the next continuing preference.
func (e *Engine) eliminate() error {
	s := e.state
	loser := s.pending
	e.logger.Debug().
		Str("candidate", string(loser)).
		Int("round", s.round).
		Msg("eliminating")

	s.profile = s.profile.Restrict(loser)
	delete(s.hopefuls, loser)
	s.eliminated = append(s.eliminated, Placement{Candidate: loser, Round: s.round})
	s.pending = ""
	s.phase = RoundInProgress
	return nil
}

func (e *Engine) elect(c ballot.Candidate) {
	s := e.state
	delete(s.hopefuls, c)
	s.elected = append(s.elected, Placement{Candidate: c, Round: s.round})
	s.seatsLeft--
	e.logger.Debug().
		Str("candidate", string(c)).
		Int("round", s.round).
		Msg("elected")
}

// electAllRemaining elects every hopeful when they exactly fill the
// remaining seats, ordered by descending first-place support with ties
// resolved by the policy.
func (e *Engine) electAllRemaining(firstPlace map[ballot.Candidate]float64) error {
	s := e.state
	for len(s.hopefuls) > 0 {
		winner, err := e.strongest(s.Hopefuls(), firstPlace)
		if err != nil {
			return err
		}
		e.elect(winner)
	}
	return nil
}

// strongest returns the candidate with the highest first-place support,
// consulting the tie-break policy when several share the top weight.
func (e *Engine) strongest(among []ballot.Candidate, firstPlace map[ballot.Candidate]float64) (ballot.Candidate, error) {
	best := firstPlace[among[0]]
	for _, c := range among[1:] {
		if firstPlace[c] > best {
			best = firstPlace[c]
		}
	}
	tied := withWeight(among, firstPlace, best)
	if len(tied) == 1 {
		return tied[0], nil
	}
	return e.tiebreak.Break(tied, Elect, e.state)
}

// weakest returns the hopeful with the lowest first-place support,
// consulting the tie-break policy when several share the bottom weight.
func (e *Engine) weakest(firstPlace map[ballot.Candidate]float64) (ballot.Candidate, error) {
	hopefuls := e.state.Hopefuls()
	worst := firstPlace[hopefuls[0]]
	for _, c := range hopefuls[1:] {
		if firstPlace[c] < worst {
			worst = firstPlace[c]
		}
	}
	tied := withWeight(hopefuls, firstPlace, worst)
	if len(tied) == 1 {
		return tied[0], nil
	}
	return e.tiebreak.Break(tied, Eliminate, e.state)
}

func withWeight(candidates []ballot.Candidate, weights map[ballot.Candidate]float64, w float64) []ballot.Candidate {
	var out []ballot.Candidate
	for _, c := range candidates {
		if weights[c] == w {
			out = append(out, c)
		}
	}
	return out
}

func candidatesAtOrAbove(weights map[ballot.Candidate]float64, quota float64) []ballot.Candidate {
	var out []ballot.Candidate
	for c, w := range weights {
		if w >= quota && w > 0 {
			out = append(out, c)
		}
	}
	return out
}

func maxWeight(weights map[ballot.Candidate]float64) float64 {
	max := 0.0
	for _, w := range weights {
		if w > max {
			max = w
		}
	}
	return max
}

func copyWeights(weights map[ballot.Candidate]float64) map[ballot.Candidate]float64 {
	out := make(map[ballot.Candidate]float64, len(weights))
	for c, w := range weights {
		out[c] = w
	}
	return out
}
