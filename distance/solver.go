package distance

// Solver computes a minimal-cost transport between two discrete mass
// distributions. Given a cost matrix and marginals a (rows) and b (columns)
// with equal totals, Solve returns a flow matrix whose row sums equal a and
// column sums equal b, together with the total flow-weighted cost.
//
// The solver is a pluggable backend behind the distance engine: Exact trades
// scale for an exact optimum, Sinkhorn trades a documented tolerance for
// speed on large supports.
type Solver interface {
	Solve(cost [][]float64, a, b []float64) (flows [][]float64, total float64, err error)
}
