package dispatch

import (
	"context"

	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/index"
)

// Strategy names, used as map keys in Result and in match explanations.
const (
	StrategyBaseline     = "baseline"
	StrategyNeighborhood = "neighborhood"
	StrategyUrgency      = "urgency"
	StrategySemantic     = "semantic"
)

const (
	// baselineRadiusMiles bounds city-level searches.
	baselineRadiusMiles = 50.0
	// neighborhoodRadiusMiles bounds the tight local search around a
	// stated neighborhood.
	neighborhoodRadiusMiles = 5.0
)

// Strategy is one way of turning accumulated facts into candidates. Each
// strategy decides for itself whether the store holds enough signal to run.
type Strategy interface {
	// Name identifies the strategy in results and logs.
	Name() string

	// Applicable reports whether the store holds the facts this strategy
	// needs. Inapplicable strategies are skipped, not failed.
	Applicable(store *core.FactStore) bool

	// Run searches the index. The store passed in is a private clone; the
	// strategy may read it freely.
	Run(ctx context.Context, store *core.FactStore, idx index.Index) ([]index.Hit, error)
}

// DefaultStrategies returns the standard strategy set in a deterministic
// order: baseline first, then the fact-gated refinements.
func DefaultStrategies() []Strategy {
	return []Strategy{
		&baselineStrategy{},
		&neighborhoodStrategy{},
		&urgencyStrategy{},
		&semanticStrategy{},
	}
}

// baselineStrategy runs on every turn. It filters by the structured facts
// that exist so far and falls back to a wide geographic net.
type baselineStrategy struct{}

func (s *baselineStrategy) Name() string { return StrategyBaseline }

func (s *baselineStrategy) Applicable(*core.FactStore) bool { return true }

func (s *baselineStrategy) Run(ctx context.Context, store *core.FactStore, idx index.Index) ([]index.Hit, error) {
	query := index.Query{
		PracticeAreas: store.Values(core.FactPracticeArea),
		Languages:     store.Values(core.FactLanguage),
		RadiusMiles:   baselineRadiusMiles,
	}
	if fact, ok := store.Get(core.FactBudgetTier); ok {
		query.BudgetTiers = []string{fact.NormalValue()}
	}
	if fact, ok := store.Get(core.FactLocation); ok {
		query.City = fact.Value
	}
	return idx.Search(ctx, query)
}

// neighborhoodStrategy runs when the user has named a neighborhood and
// searches a much tighter radius around it.
type neighborhoodStrategy struct{}

func (s *neighborhoodStrategy) Name() string { return StrategyNeighborhood }

func (s *neighborhoodStrategy) Applicable(store *core.FactStore) bool {
	return store.Has(core.FactNeighborhood)
}

func (s *neighborhoodStrategy) Run(ctx context.Context, store *core.FactStore, idx index.Index) ([]index.Hit, error) {
	fact, _ := store.Get(core.FactNeighborhood)
	query := index.Query{
		Neighborhood:  fact.Value,
		RadiusMiles:   neighborhoodRadiusMiles,
		PracticeAreas: store.Values(core.FactPracticeArea),
	}
	return idx.Search(ctx, query)
}

// urgencyStrategy runs when urgency is high and restricts to professionals
// accepting clients right now.
type urgencyStrategy struct{}

func (s *urgencyStrategy) Name() string { return StrategyUrgency }

func (s *urgencyStrategy) Applicable(store *core.FactStore) bool {
	fact, ok := store.Get(core.FactUrgency)
	return ok && fact.NormalValue() == "high"
}

func (s *urgencyStrategy) Run(ctx context.Context, store *core.FactStore, idx index.Index) ([]index.Hit, error) {
	query := index.Query{
		AvailableNow:  true,
		PracticeAreas: store.Values(core.FactPracticeArea),
		RadiusMiles:   baselineRadiusMiles,
	}
	if fact, ok := store.Get(core.FactLocation); ok {
		query.City = fact.Value
	}
	return idx.Search(ctx, query)
}

// semanticStrategy runs when a free-text remainder survived extraction,
// matching soft preferences the structured filters cannot express.
type semanticStrategy struct{}

func (s *semanticStrategy) Name() string { return StrategySemantic }

func (s *semanticStrategy) Applicable(store *core.FactStore) bool {
	return store.Remainder() != ""
}

func (s *semanticStrategy) Run(ctx context.Context, store *core.FactStore, idx index.Index) ([]index.Hit, error) {
	return idx.Search(ctx, index.Query{Text: store.Remainder()})
}
