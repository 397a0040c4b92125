// Package rank turns per-strategy candidate lists into a single ordered
// result set.
//
// Candidates are grouped by id, their strategy evidence max-merged into
// per-dimension scores alongside direct profile-vs-facts comparisons, and a
// weighted composite computed over the populated dimensions only. Confidence
// scales the composite by dimension coverage, so a thin match never outranks
// a well-evidenced one on score alone. Ranking is fully deterministic,
// including tie-breaks.
package rank
