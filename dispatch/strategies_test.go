package dispatch

import (
	"context"
	"sync"
	"testing"

	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queryRecorder captures every query it receives and replies with canned hits.
type queryRecorder struct {
	mu      sync.Mutex
	queries map[string]index.Query
	hits    []index.Hit
	err     error
}

func newQueryRecorder() *queryRecorder {
	return &queryRecorder{queries: make(map[string]index.Query)}
}

func (r *queryRecorder) Search(_ context.Context, query index.Query) ([]index.Hit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries[keyFor(query)] = query
	return r.hits, r.err
}

// keyFor buckets recorded queries by the strategy shape that produced them.
func keyFor(query index.Query) string {
	switch {
	case query.Neighborhood != "":
		return StrategyNeighborhood
	case query.AvailableNow:
		return StrategyUrgency
	case query.Text != "":
		return StrategySemantic
	default:
		return StrategyBaseline
	}
}

func storeWith(t *testing.T, update core.FactUpdate) *core.FactStore {
	t.Helper()
	store := core.NewFactStore()
	store.AdvanceTurn()
	store.Apply(&update)
	return store
}

func TestStrategyApplicability(t *testing.T) {
	empty := core.NewFactStore()

	full := storeWith(t, core.FactUpdate{
		Facts: []core.Fact{
			{Kind: core.FactPracticeArea, Value: "custody", Confidence: 0.9, SourceTurn: 1},
			{Kind: core.FactNeighborhood, Value: "Tarzana", Confidence: 0.9, SourceTurn: 1},
			{Kind: core.FactUrgency, Value: "high", Confidence: 0.9, SourceTurn: 1},
		},
		Remainder: "someone patient",
	})

	lowUrgency := storeWith(t, core.FactUpdate{
		Facts: []core.Fact{{Kind: core.FactUrgency, Value: "low", Confidence: 0.9, SourceTurn: 1}},
	})

	t.Run("baseline always applies", func(t *testing.T) {
		assert.True(t, (&baselineStrategy{}).Applicable(empty))
		assert.True(t, (&baselineStrategy{}).Applicable(full))
	})

	t.Run("neighborhood requires a neighborhood fact", func(t *testing.T) {
		assert.False(t, (&neighborhoodStrategy{}).Applicable(empty))
		assert.True(t, (&neighborhoodStrategy{}).Applicable(full))
	})

	t.Run("urgency requires high urgency", func(t *testing.T) {
		assert.False(t, (&urgencyStrategy{}).Applicable(empty))
		assert.False(t, (&urgencyStrategy{}).Applicable(lowUrgency))
		assert.True(t, (&urgencyStrategy{}).Applicable(full))
	})

	t.Run("semantic requires a remainder", func(t *testing.T) {
		assert.False(t, (&semanticStrategy{}).Applicable(empty))
		assert.True(t, (&semanticStrategy{}).Applicable(full))
	})
}

func TestStrategyQueries(t *testing.T) {
	ctx := context.Background()

	store := storeWith(t, core.FactUpdate{
		Facts: []core.Fact{
			{Kind: core.FactPracticeArea, Value: "custody", Confidence: 0.9, SourceTurn: 1},
			{Kind: core.FactBudgetTier, Value: "low", Confidence: 0.8, SourceTurn: 1},
			{Kind: core.FactLocation, Value: "Los Angeles", Confidence: 0.8, SourceTurn: 1},
			{Kind: core.FactNeighborhood, Value: "Tarzana", Confidence: 0.9, SourceTurn: 1},
			{Kind: core.FactUrgency, Value: "high", Confidence: 0.9, SourceTurn: 1},
			{Kind: core.FactLanguage, Value: "spanish", Confidence: 0.9, SourceTurn: 1},
		},
		Remainder: "someone patient who explains things",
	})

	t.Run("baseline carries structured facts and the wide radius", func(t *testing.T) {
		recorder := newQueryRecorder()
		_, err := (&baselineStrategy{}).Run(ctx, store, recorder)
		require.NoError(t, err)

		query := recorder.queries[StrategyBaseline]
		assert.Equal(t, []string{"custody"}, query.PracticeAreas)
		assert.Equal(t, []string{"low"}, query.BudgetTiers)
		assert.Equal(t, []string{"spanish"}, query.Languages)
		assert.Equal(t, "Los Angeles", query.City)
		assert.Equal(t, baselineRadiusMiles, query.RadiusMiles)
	})

	t.Run("neighborhood uses the tight radius", func(t *testing.T) {
		recorder := newQueryRecorder()
		_, err := (&neighborhoodStrategy{}).Run(ctx, store, recorder)
		require.NoError(t, err)

		query := recorder.queries[StrategyNeighborhood]
		assert.Equal(t, "Tarzana", query.Neighborhood)
		assert.Equal(t, neighborhoodRadiusMiles, query.RadiusMiles)
	})

	t.Run("urgency restricts to available professionals", func(t *testing.T) {
		recorder := newQueryRecorder()
		_, err := (&urgencyStrategy{}).Run(ctx, store, recorder)
		require.NoError(t, err)

		query := recorder.queries[StrategyUrgency]
		assert.True(t, query.AvailableNow)
		assert.Equal(t, []string{"custody"}, query.PracticeAreas)
	})

	t.Run("semantic sends the remainder as text", func(t *testing.T) {
		recorder := newQueryRecorder()
		_, err := (&semanticStrategy{}).Run(ctx, store, recorder)
		require.NoError(t, err)

		query := recorder.queries[StrategySemantic]
		assert.Equal(t, "someone patient who explains things", query.Text)
	})
}
