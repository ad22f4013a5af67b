package distance

import (
	"math"

	"github.com/ziglaser/votekit/ballot"
)

// CostModel defines a non-negative pairwise cost between two rankings over
// the same candidate set. Rankings may be partial or contain tie groups.
// Every model must report zero cost for identical rankings; Symmetric
// reports whether Cost(a, b) == Cost(b, a) for all inputs.
type CostModel interface {
	Cost(a, b ballot.Ranking) float64
	Symmetric() bool
}

// KendallTau counts pairwise ordering disagreements between two rankings.
// Only candidate pairs ranked in both rankings are comparable; a pair where
// the strict orders are reversed counts 1, a pair tied in one ranking but
// strictly ordered in the other counts 1/2. The count is normalized by the
// number of comparable pairs, so costs fall in [0, 1]. Two rankings with no
// comparable pair have cost 0. Symmetric.
type KendallTau struct{}

func (KendallTau) Symmetric() bool { return true }

func (KendallTau) Cost(a, b ballot.Ranking) float64 {
	posA := positions(a)
	posB := positions(b)

	var shared []ballot.Candidate
	for c := range posA {
		if _, ok := posB[c]; ok {
			shared = append(shared, c)
		}
	}

	comparable, disagreement := 0, 0.0
	for i := 0; i < len(shared); i++ {
		for j := i + 1; j < len(shared); j++ {
			c, d := shared[i], shared[j]
			orderA := compare(posA[c], posA[d])
			orderB := compare(posB[c], posB[d])
			comparable++
			switch {
			case orderA == orderB:
				// agreement, including both tied
			case orderA == 0 || orderB == 0:
				// tied in one ranking, strictly ordered in the other
				disagreement += 0.5
			default:
				disagreement += 1
			}
		}
	}
	if comparable == 0 {
		return 0
	}
	return disagreement / float64(comparable)
}

// Displacement sums the absolute difference in rank position for every
// candidate ranked in either ranking. A candidate missing from one side is
// assigned the configured penalty position. Because both sides use the same
// penalty, this implementation is symmetric; it is not normalized, so costs
// grow with the number of candidates.
type Displacement struct {
	// Penalty is the position assigned to a candidate absent from a
	// ranking. It should exceed the deepest real position, e.g. the number
	// of candidates plus one. Left at zero or negative, it defaults to one
	// past the deeper of the two rankings, so a missing candidate always
	// sits below every ranked one.
	Penalty int
}

func (Displacement) Symmetric() bool { return true }

func (d Displacement) Cost(a, b ballot.Ranking) float64 {
	posA := positions(a)
	posB := positions(b)
	penalty := d.Penalty
	if penalty <= 0 {
		penalty = max(len(a), len(b)) + 1
	}

	total := 0.0
	seen := make(map[ballot.Candidate]bool)
	for _, pos := range []map[ballot.Candidate]int{posA, posB} {
		for c := range pos {
			if seen[c] {
				continue
			}
			seen[c] = true
			pa, ok := posA[c]
			if !ok {
				pa = penalty
			}
			pb, ok := posB[c]
			if !ok {
				pb = penalty
			}
			total += math.Abs(float64(pa - pb))
		}
	}
	return total
}

// positions maps each ranked candidate to its 1-based tie-group position.
func positions(r ballot.Ranking) map[ballot.Candidate]int {
	out := make(map[ballot.Candidate]int)
	for i, group := range r {
		for _, c := range group {
			out[c] = i + 1
		}
	}
	return out
}

func compare(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
