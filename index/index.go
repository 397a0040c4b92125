package index

import (
	"context"

	"github.com/barmatch/barmatch/core"
)

// Query is one request against the professional search index. A query may
// combine structured filters with a free-text component; empty fields are
// ignored.
type Query struct {
	// Text is a free-text relevance query (semantic search).
	Text string

	// Structured filters. Slice filters match profiles overlapping any value.
	PracticeAreas []string
	BudgetTiers   []string
	Languages     []string

	// City scopes results geographically; RadiusMiles bounds the distance
	// from the city or neighborhood centroid. Zero means the index default.
	City        string
	RadiusMiles float64

	// Neighborhood is a neighborhood token; when set the effective search
	// area is the neighborhood rather than the whole city.
	Neighborhood string

	// AvailableNow restricts results to professionals taking urgent matters.
	AvailableNow bool

	// Limit caps the number of hits. Zero means the index default.
	Limit int
}

// Empty reports whether the query carries no filters and no text.
func (q Query) Empty() bool {
	return q.Text == "" &&
		len(q.PracticeAreas) == 0 &&
		len(q.BudgetTiers) == 0 &&
		len(q.Languages) == 0 &&
		q.City == "" &&
		q.Neighborhood == "" &&
		!q.AvailableNow
}

// Hit is one professional surfaced by a query. RawScore is index-local and
// only comparable within a single query's results.
type Hit struct {
	CandidateId   core.ID
	RawScore      float64
	MatchedFields []core.FactKind
}

// Index is the search index consumed by the matching core. Implementations
// must be safe for arbitrary concurrent callers and should order hits by
// RawScore descending.
type Index interface {
	Search(ctx context.Context, query Query) ([]Hit, error)
}
