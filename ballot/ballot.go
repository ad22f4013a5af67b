package ballot

import (
	"sort"
	"strings"
)

// Candidate is the identifier of a single candidate within an election.
type Candidate string

// Ranking is an ordered preference over candidates, top choice first. Each
// position holds a tie group: a single candidate expresses a strict
// preference, multiple candidates in one group are ranked equally. A ranking
// may be partial, covering only a subset of the candidate set.
type Ranking [][]Candidate

// Linear builds a strict ranking where each candidate occupies their own
// position, top choice first.
func Linear(candidates ...Candidate) Ranking {
	r := make(Ranking, len(candidates))
	for i, c := range candidates {
		r[i] = []Candidate{c}
	}
	return r
}

// Candidates returns every candidate named in the ranking, walking tie
// groups from top to bottom.
func (r Ranking) Candidates() []Candidate {
	var out []Candidate
	for _, group := range r {
		out = append(out, group...)
	}
	return out
}

// Contains reports whether the candidate appears anywhere in the ranking.
func (r Ranking) Contains(c Candidate) bool {
	return r.Position(c) != 0
}

// Position returns the 1-based position of the tie group holding the
// candidate, or 0 if the candidate is not ranked. Candidates in the same
// tie group share a position.
func (r Ranking) Position(c Candidate) int {
	for i, group := range r {
		for _, member := range group {
			if member == c {
				return i + 1
			}
		}
	}
	return 0
}

// Empty reports whether the ranking names no candidates at all.
func (r Ranking) Empty() bool {
	return len(r) == 0
}

// Without returns a copy of the ranking with the given candidates removed.
// Removing a candidate from a tie group shrinks the group; a group whose
// members are all removed disappears entirely, promoting the groups below.
func (r Ranking) Without(remove map[Candidate]bool) Ranking {
	var out Ranking
	for _, group := range r {
		var kept []Candidate
		for _, c := range group {
			if !remove[c] {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

// String renders the ranking in a canonical form: tie groups joined by ">",
// members of a group sorted and joined by "=". Two rankings expressing the
// same preference render identically, so the string doubles as a map key.
func (r Ranking) String() string {
	var b strings.Builder
	for i, group := range r {
		if i > 0 {
			b.WriteByte('>')
		}
		members := make([]string, len(group))
		for j, c := range group {
			members[j] = string(c)
		}
		sort.Strings(members)
		b.WriteString(strings.Join(members, "="))
	}
	return b.String()
}

// Equal reports whether two rankings express the same preference.
func (r Ranking) Equal(other Ranking) bool {
	return r.String() == other.String()
}

// Ballot pairs a ranking with the vote weight behind it. Weight starts as a
// count of voters and may become fractional after surplus transfers.
type Ballot struct {
	Ranking Ranking
	Weight  float64
}
