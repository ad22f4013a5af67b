package ballot

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedBallot is returned when a profile is constructed from a ballot
// that references an undeclared candidate, ranks a candidate more than once,
// or carries a negative weight.
var ErrMalformedBallot = errors.New("malformed ballot")

// Profile is a weighted multiset of rankings over a fixed candidate set.
//
// The candidate set is the universe of valid identifiers and never changes
// after construction: elimination and election during tabulation remove
// candidates from consideration by deriving restricted profiles, not by
// shrinking the declared set. All deriving operations (Restrict) return new
// profiles and leave the receiver untouched, so callers may keep references
// to a profile while an engine works on a derived copy.
type Profile struct {
	order    []Candidate
	universe map[Candidate]bool
	ballots  []Ballot
	index    map[string]int
	total    float64
}

// NewProfile builds a profile from a declared candidate set and a collection
// of weighted ballots. Ballots expressing the same ranking are merged by
// summing their weights. Construction fails with ErrMalformedBallot if any
// ballot names a candidate outside the declared set, ranks a candidate more
// than once (across all positions, tie groups included), has a negative
// weight, or ranks nobody at all: a born-exhausted ballot would inflate the
// total weight without ever supporting a candidate.
func NewProfile(candidates []Candidate, ballots []Ballot) (*Profile, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: declared candidate set is empty", ErrMalformedBallot)
	}
	universe := make(map[Candidate]bool, len(candidates))
	order := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if universe[c] {
			return nil, fmt.Errorf("%w: candidate %q declared twice", ErrMalformedBallot, c)
		}
		universe[c] = true
		order = append(order, c)
	}

	p := &Profile{
		order:    order,
		universe: universe,
		index:    make(map[string]int),
	}
	for _, b := range ballots {
		if b.Weight < 0 {
			return nil, fmt.Errorf("%w: ranking %s has negative weight %v", ErrMalformedBallot, b.Ranking, b.Weight)
		}
		if b.Ranking.Empty() {
			return nil, fmt.Errorf("%w: ranking is empty", ErrMalformedBallot)
		}
		seen := make(map[Candidate]bool)
		for _, c := range b.Ranking.Candidates() {
			if !universe[c] {
				return nil, fmt.Errorf("%w: candidate %q is not in the declared set", ErrMalformedBallot, c)
			}
			if seen[c] {
				return nil, fmt.Errorf("%w: candidate %q ranked twice", ErrMalformedBallot, c)
			}
			seen[c] = true
		}
		p.add(b)
	}
	return p, nil
}

// add merges a validated ballot into the profile.
func (p *Profile) add(b Ballot) {
	key := b.Ranking.String()
	if i, ok := p.index[key]; ok {
		p.ballots[i].Weight += b.Weight
	} else {
		p.index[key] = len(p.ballots)
		p.ballots = append(p.ballots, Ballot{Ranking: b.Ranking, Weight: b.Weight})
	}
	p.total += b.Weight
}

// Candidates returns the declared candidate set in declaration order.
func (p *Profile) Candidates() []Candidate {
	out := make([]Candidate, len(p.order))
	copy(out, p.order)
	return out
}

// HasCandidate reports whether the candidate belongs to the declared set.
func (p *Profile) HasCandidate(c Candidate) bool {
	return p.universe[c]
}

// Total returns the sum of all ballot weights.
func (p *Profile) Total() float64 {
	return p.total
}

// NumBallots returns the number of distinct rankings carrying weight.
func (p *Profile) NumBallots() int {
	return len(p.ballots)
}

// Weight returns the weight behind the given ranking, or 0 if no ballot in
// the profile expresses it.
func (p *Profile) Weight(r Ranking) float64 {
	if i, ok := p.index[r.String()]; ok {
		return p.ballots[i].Weight
	}
	return 0
}

// Ballots returns a copy of the profile's distinct weighted ballots.
func (p *Profile) Ballots() []Ballot {
	out := make([]Ballot, len(p.ballots))
	copy(out, p.ballots)
	return out
}

// FirstPlaceWeights aggregates the weight behind each candidate's first-place
// support. A candidate ranked alone at the top of a ballot receives the whole
// ballot weight; candidates tied at the top split the weight evenly. Only
// candidates with first-place support appear in the result.
func (p *Profile) FirstPlaceWeights() map[Candidate]float64 {
	votes := make(map[Candidate]float64)
	for _, b := range p.ballots {
		if b.Ranking.Empty() {
			continue
		}
		top := b.Ranking[0]
		share := b.Weight / float64(len(top))
		for _, c := range top {
			votes[c] += share
		}
	}
	return votes
}

// Restrict returns a new profile with the given candidates removed from every
// ballot. Tie groups collapse accordingly and ballots left with no ranked
// candidates drop out entirely, so the restricted total weight may be lower
// than the original. The declared candidate set is unchanged. Restricting by
// nothing returns an equal copy.
func (p *Profile) Restrict(remove ...Candidate) *Profile {
	removeSet := make(map[Candidate]bool, len(remove))
	for _, c := range remove {
		removeSet[c] = true
	}
	out := &Profile{
		order:    p.order,
		universe: p.universe,
		index:    make(map[string]int),
	}
	for _, b := range p.ballots {
		kept := b.Ranking.Without(removeSet)
		if kept.Empty() || b.Weight == 0 {
			continue
		}
		out.add(Ballot{Ranking: kept, Weight: b.Weight})
	}
	return out
}

// Reweighted returns a new profile where every ballot's weight is replaced by
// the result of fn. Ballots mapped to zero weight are dropped. Used by the
// tabulation engine for fractional surplus transfers.
func (p *Profile) Reweighted(fn func(Ballot) float64) *Profile {
	out := &Profile{
		order:    p.order,
		universe: p.universe,
		index:    make(map[string]int),
	}
	for _, b := range p.ballots {
		w := fn(b)
		if w <= 0 {
			continue
		}
		out.add(Ballot{Ranking: b.Ranking, Weight: w})
	}
	return out
}

// Mentions counts how often each candidate is named anywhere on a ballot,
// weighted by ballot weight. Members of a tie group split one mention evenly.
func (p *Profile) Mentions() map[Candidate]float64 {
	mentions := make(map[Candidate]float64)
	for _, b := range p.ballots {
		for _, group := range b.Ranking {
			share := b.Weight / float64(len(group))
			for _, c := range group {
				mentions[c] += share
			}
		}
	}
	return mentions
}

// BordaScores assigns each candidate the weighted sum of positional points
// across all ballots: with n declared candidates, the top position is worth
// n points down to 1 for the last. Members of a tie group share the average
// of the points their positions span. Unranked candidates score nothing from
// that ballot.
func (p *Profile) BordaScores() map[Candidate]float64 {
	n := len(p.order)
	scores := make(map[Candidate]float64)
	for _, b := range p.ballots {
		pos := 0
		for _, group := range b.Ranking {
			// positions pos..pos+len(group)-1 are worth n-pos..n-pos-len(group)+1
			avg := float64(n-pos) - float64(len(group)-1)/2
			for _, c := range group {
				scores[c] += b.Weight * avg
			}
			pos += len(group)
		}
	}
	return scores
}

// OrderByBorda returns the declared candidates sorted by descending Borda
// score, breaking score ties by declaration order.
func (p *Profile) OrderByBorda() []Candidate {
	scores := p.BordaScores()
	rank := make(map[Candidate]int, len(p.order))
	for i, c := range p.order {
		rank[c] = i
	}
	out := p.Candidates()
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := scores[out[i]], scores[out[j]]
		if si != sj {
			return si > sj
		}
		return rank[out[i]] < rank[out[j]]
	})
	return out
}

// Equal reports whether two profiles declare the same candidate set and hold
// the same weight behind every ranking.
func (p *Profile) Equal(other *Profile) bool {
	if len(p.order) != len(other.order) || len(p.ballots) != len(other.ballots) {
		return false
	}
	for i, c := range p.order {
		if other.order[i] != c {
			return false
		}
	}
	for _, b := range p.ballots {
		if other.Weight(b.Ranking) != b.Weight {
			return false
		}
	}
	return true
}
