package distance

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Sinkhorn approximates the optimal transport with entropic regularization,
// iterating the dual potentials in log domain for numerical stability. The
// returned plan satisfies the marginal constraints to within Tolerance (L1
// error across both marginals); the total cost approaches the exact optimum
// as Epsilon shrinks, at the price of more iterations.
type Sinkhorn struct {
	// Epsilon is the entropic regularization strength.
	Epsilon float64
	// MaxIterations bounds the number of potential updates before the
	// solve is abandoned.
	MaxIterations int
	// Tolerance is the L1 marginal error at which the solve is accepted.
	Tolerance float64
}

func (s Sinkhorn) Solve(cost [][]float64, a, b []float64) ([][]float64, float64, error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil, 0, errors.New("empty marginal")
	}
	eps := s.Epsilon
	if eps <= 0 {
		return nil, 0, fmt.Errorf("regularization epsilon must be positive, got %v", eps)
	}

	logA := make([]float64, n)
	for i, v := range a {
		if v <= 0 {
			return nil, 0, errors.New("sinkhorn requires strictly positive masses")
		}
		logA[i] = math.Log(v)
	}
	logB := make([]float64, m)
	for j, v := range b {
		if v <= 0 {
			return nil, 0, errors.New("sinkhorn requires strictly positive masses")
		}
		logB[j] = math.Log(v)
	}

	f := make([]float64, n)
	g := make([]float64, m)
	rowScratch := make([]float64, m)
	colScratch := make([]float64, n)

	for iter := 0; iter < s.MaxIterations; iter++ {
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				rowScratch[j] = (g[j] - cost[i][j]) / eps
			}
			f[i] = eps * (logA[i] - floats.LogSumExp(rowScratch))
		}
		for j := 0; j < m; j++ {
			for i := 0; i < n; i++ {
				colScratch[i] = (f[i] - cost[i][j]) / eps
			}
			g[j] = eps * (logB[j] - floats.LogSumExp(colScratch))
		}

		flows := s.plan(cost, f, g)
		if marginalError(flows, a, b) <= s.Tolerance {
			total := 0.0
			for i := range flows {
				for j, p := range flows[i] {
					total += p * cost[i][j]
				}
			}
			return flows, total, nil
		}
	}
	return nil, 0, fmt.Errorf("sinkhorn did not converge within %d iterations", s.MaxIterations)
}

func (s Sinkhorn) plan(cost [][]float64, f, g []float64) [][]float64 {
	flows := make([][]float64, len(f))
	for i := range flows {
		flows[i] = make([]float64, len(g))
		for j := range flows[i] {
			flows[i][j] = math.Exp((f[i] + g[j] - cost[i][j]) / s.Epsilon)
		}
	}
	return flows
}

// marginalError sums the absolute deviation of the plan's row and column
// sums from the requested marginals.
func marginalError(flows [][]float64, a, b []float64) float64 {
	err := 0.0
	colSums := make([]float64, len(b))
	for i := range flows {
		err += math.Abs(floats.Sum(flows[i]) - a[i])
		floats.Add(colSums, flows[i])
	}
	for j := range colSums {
		err += math.Abs(colSums[j] - b[j])
	}
	return err
}
