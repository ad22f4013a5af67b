// Package votekit is a computational social-choice toolkit for analyzing
// ranked-ballot elections at scale.
//
// The ballot package holds the data model: weighted rankings over a fixed
// candidate set, with partial rankings and tie groups supported. The
// election package tabulates multi-winner transferable-vote counts with
// pluggable quota and tie-break strategies. The distance package measures
// how far apart two ballot distributions are by solving an optimal-transport
// problem over the space of rankings.
//
// Both engines are synchronous and side-effect-free with respect to their
// inputs, so independent tabulations and comparisons can run in parallel
// with no coordination.
package votekit
