package distance

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ziglaser/votekit/ballot"
)

// ErrIncompatibleCandidateSet is returned when two profiles being compared
// do not declare an identical candidate universe. Distances across different
// elections are only meaningful on the same candidate set.
var ErrIncompatibleCandidateSet = errors.New("incompatible candidate sets")

// Engine computes a principled distance between two ballot profiles: each
// profile's distinct ballots become support points weighted by normalized
// mass, the cost model prices moving a unit of mass between any two
// rankings, and a transport solver finds the cheapest way to morph one
// distribution into the other. The scalar distance is that minimal cost;
// the plan records where the mass went.
//
// The solver backend is pluggable: the default Exact backend is exact up to
// float64 rounding, the Sinkhorn backend is accurate to its configured
// marginal tolerance.
type Engine struct {
	model  CostModel
	solver Solver
	logger zerolog.Logger
}

// Option is a configurable parameter of the engine. If left unset, defaults
// will be used.
type Option func(e *Engine)

// WithSolver replaces the default exact transport backend.
func WithSolver(s Solver) Option {
	return func(e *Engine) {
		e.solver = s
	}
}

// WithLogger sets the logger used to trace solves.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine constructs a distance engine around a ranking cost model.
func NewEngine(model CostModel, opts ...Option) *Engine {
	e := &Engine{
		model:  model,
		solver: Exact{},
		logger: zerolog.New(os.Stdout).Level(zerolog.WarnLevel),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Distance returns the optimal-transport distance between two profiles
// under the engine's cost model, together with the transport plan achieving
// it. The profiles must declare identical candidate universes and each must
// carry positive total weight. Neither profile is mutated.
func (e *Engine) Distance(a, b *ballot.Profile) (float64, *Plan, error) {
	if a == nil || b == nil {
		return 0, nil, errors.New("profiles must not be nil")
	}
	if err := sameUniverse(a, b); err != nil {
		return 0, nil, err
	}

	srcRankings, srcMass, err := support(a)
	if err != nil {
		return 0, nil, err
	}
	dstRankings, dstMass, err := support(b)
	if err != nil {
		return 0, nil, err
	}

	cost := make([][]float64, len(srcRankings))
	for i, ra := range srcRankings {
		cost[i] = make([]float64, len(dstRankings))
		for j, rb := range dstRankings {
			cost[i][j] = e.model.Cost(ra, rb)
		}
	}

	flows, total, err := e.solver.Solve(cost, srcMass, dstMass)
	if err != nil {
		return 0, nil, fmt.Errorf("transport solve: %w", err)
	}
	e.logger.Debug().
		Int("source_support", len(srcRankings)).
		Int("target_support", len(dstRankings)).
		Float64("distance", total).
		Msg("solved transport")

	return total, &Plan{
		source: srcRankings,
		target: dstRankings,
		flows:  flows,
		cost:   total,
	}, nil
}

// support extracts a profile's distinct rankings and their masses,
// normalized to sum to one. Zero-weight ballots carry no mass and are
// dropped from the support; a profile with no weight at all has no
// distribution to transport and is rejected as malformed input.
func support(p *ballot.Profile) ([]ballot.Ranking, []float64, error) {
	total := p.Total()
	if total <= 0 {
		return nil, nil, fmt.Errorf("%w: profile carries no weight", ballot.ErrMalformedBallot)
	}
	var rankings []ballot.Ranking
	var masses []float64
	for _, b := range p.Ballots() {
		if b.Weight <= 0 {
			continue
		}
		rankings = append(rankings, b.Ranking)
		masses = append(masses, b.Weight/total)
	}
	return rankings, masses, nil
}

func sameUniverse(a, b *ballot.Profile) error {
	ca, cb := a.Candidates(), b.Candidates()
	if len(ca) != len(cb) {
		return fmt.Errorf("%w: %d candidates vs %d", ErrIncompatibleCandidateSet, len(ca), len(cb))
	}
	for _, c := range ca {
		if !b.HasCandidate(c) {
			return fmt.Errorf("%w: candidate %q only declared on one side", ErrIncompatibleCandidateSet, c)
		}
	}
	return nil
}
