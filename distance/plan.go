package distance

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ziglaser/votekit/ballot"
)

// Plan is the transport plan produced alongside a distance: a non-negative
// flow from every distinct ballot in the source profile to every distinct
// ballot in the target profile, with flows out of each source ballot summing
// to its normalized mass and flows into each target ballot likewise. The
// plan is immutable once returned.
type Plan struct {
	source []ballot.Ranking
	target []ballot.Ranking
	flows  [][]float64
	cost   float64
}

// Source returns the distinct rankings of the source profile, in the order
// indexing the plan's rows.
func (p *Plan) Source() []ballot.Ranking {
	return append([]ballot.Ranking(nil), p.source...)
}

// Target returns the distinct rankings of the target profile, in the order
// indexing the plan's columns.
func (p *Plan) Target() []ballot.Ranking {
	return append([]ballot.Ranking(nil), p.target...)
}

// Flow returns the mass moved from source ballot i to target ballot j.
func (p *Plan) Flow(i, j int) float64 {
	return p.flows[i][j]
}

// Flows returns a copy of the whole flow matrix.
func (p *Plan) Flows() [][]float64 {
	out := make([][]float64, len(p.flows))
	for i, row := range p.flows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Marginals returns the plan's row sums and column sums.
func (p *Plan) Marginals() (rows, cols []float64) {
	rows = make([]float64, len(p.flows))
	if len(p.flows) == 0 {
		return rows, nil
	}
	cols = make([]float64, len(p.flows[0]))
	for i, row := range p.flows {
		rows[i] = floats.Sum(row)
		floats.Add(cols, row)
	}
	return rows, cols
}

// TotalCost returns the flow-weighted cost the plan achieves, which is the
// distance reported by the engine.
func (p *Plan) TotalCost() float64 {
	return p.cost
}
