package distance

import (
	"errors"
	"fmt"
	"math"
)

// Exact solves the transportation problem to optimality using successive
// shortest augmenting paths over the bipartite flow network. Each
// augmentation saturates a remaining supply, a remaining demand, or a
// residual arc, so the solve terminates after a bounded number of paths.
// The result is exact up to float64 rounding.
type Exact struct{}

const flowEps = 1e-12

func (Exact) Solve(cost [][]float64, a, b []float64) ([][]float64, float64, error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil, 0, errors.New("empty marginal")
	}
	if len(cost) != n {
		return nil, 0, fmt.Errorf("cost matrix has %d rows, want %d", len(cost), n)
	}
	sumA, sumB := 0.0, 0.0
	for _, v := range a {
		if v < 0 {
			return nil, 0, errors.New("negative mass")
		}
		sumA += v
	}
	for _, v := range b {
		if v < 0 {
			return nil, 0, errors.New("negative mass")
		}
		sumB += v
	}
	if math.Abs(sumA-sumB) > 1e-9 {
		return nil, 0, fmt.Errorf("marginal totals differ: %v vs %v", sumA, sumB)
	}

	flows := make([][]float64, n)
	for i := range flows {
		flows[i] = make([]float64, m)
	}
	remA := append([]float64(nil), a...)
	remB := append([]float64(nil), b...)

	// node numbering: 0 = source, 1..n = supplies, n+1..n+m = demands,
	// n+m+1 = sink
	src, sink := 0, n+m+1
	remaining := sumA
	maxPaths := 4 * (n*m + n + m)

	for paths := 0; remaining > flowEps; paths++ {
		if paths > maxPaths {
			return nil, 0, errors.New("transport solve failed to converge")
		}
		prev, ok := shortestPath(cost, flows, remA, remB, n, m)
		if !ok {
			return nil, 0, errors.New("transport problem is infeasible")
		}

		// walk the path backwards to find the bottleneck
		delta := remaining
		for v := sink; v != src; v = prev[v] {
			u := prev[v]
			switch {
			case u == src:
				delta = math.Min(delta, remA[v-1])
			case v == sink:
				delta = math.Min(delta, remB[u-n-1])
			case u <= n:
				// forward arc supply -> demand has no capacity bound
			default:
				// residual arc demand -> supply, bounded by existing flow
				delta = math.Min(delta, flows[v-1][u-n-1])
			}
		}

		for v := sink; v != src; v = prev[v] {
			u := prev[v]
			switch {
			case u == src:
				remA[v-1] -= delta
			case v == sink:
				remB[u-n-1] -= delta
			case u <= n:
				flows[u-1][v-n-1] += delta
			default:
				flows[v-1][u-n-1] -= delta
			}
		}
		remaining -= delta
	}

	total := 0.0
	for i := range flows {
		for j, f := range flows[i] {
			total += f * cost[i][j]
		}
	}
	return flows, total, nil
}

// shortestPath runs Bellman-Ford over the residual network and returns the
// predecessor of each node on a cheapest source-to-sink path. Residual arcs
// carry negative costs, which Bellman-Ford handles directly.
func shortestPath(cost, flows [][]float64, remA, remB []float64, n, m int) ([]int, bool) {
	src, sink := 0, n+m+1
	nodes := n + m + 2
	dist := make([]float64, nodes)
	prev := make([]int, nodes)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[src] = 0

	for iter := 0; iter < nodes; iter++ {
		updated := false
		for i := 0; i < n; i++ {
			if remA[i] > flowEps && dist[src] < dist[1+i] {
				dist[1+i] = dist[src]
				prev[1+i] = src
				updated = true
			}
		}
		for i := 0; i < n; i++ {
			if math.IsInf(dist[1+i], 1) {
				continue
			}
			for j := 0; j < m; j++ {
				if d := dist[1+i] + cost[i][j]; d < dist[1+n+j]-flowEps {
					dist[1+n+j] = d
					prev[1+n+j] = 1 + i
					updated = true
				}
			}
		}
		for j := 0; j < m; j++ {
			if math.IsInf(dist[1+n+j], 1) {
				continue
			}
			for i := 0; i < n; i++ {
				if flows[i][j] > flowEps {
					if d := dist[1+n+j] - cost[i][j]; d < dist[1+i]-flowEps {
						dist[1+i] = d
						prev[1+i] = 1 + n + j
						updated = true
					}
				}
			}
			if remB[j] > flowEps && dist[1+n+j] < dist[sink] {
				dist[sink] = dist[1+n+j]
				prev[sink] = 1 + n + j
				updated = true
			}
		}
		if !updated {
			break
		}
	}
	return prev, prev[sink] != -1
}
