package rank

import (
	"context"
	"testing"

	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/dispatch"
	"github.com/barmatch/barmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProfiles(t *testing.T) (map[string]core.ID, *Ranker) {
	t.Helper()

	profiles, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	fixtures := []*core.Profile{
		{
			Name:               "Maria Alvarez",
			PracticeAreas:      []string{"custody", "divorce"},
			Languages:          []string{"spanish", "english"},
			Neighborhood:       "Tarzana",
			City:               "Los Angeles",
			BudgetTiers:        []string{"low", "medium"},
			PaymentPlans:       true,
			Rating:             4.8,
			ReviewCount:        120,
			ResponseTimeHours:  2,
			AvailableNow:       true,
			CommunicationStyle: "patient",
		},
		{
			Name:              "David Chen",
			PracticeAreas:     []string{"custody"},
			Languages:         []string{"mandarin", "english"},
			Neighborhood:      "Encino",
			City:              "Los Angeles",
			BudgetTiers:       []string{"medium", "high"},
			Rating:            4.5,
			ReviewCount:       80,
			ResponseTimeHours: 12,
		},
		{
			Name:              "Angela Brooks",
			PracticeAreas:     []string{"custody", "adoption"},
			Languages:         []string{"english"},
			Neighborhood:      "Downtown",
			City:              "Long Beach",
			BudgetTiers:       []string{"high", "premium"},
			Rating:            4.9,
			ReviewCount:       200,
			ResponseTimeHours: 24,
		},
	}

	added, err := profiles.AddProfiles(context.Background(), fixtures...)
	require.NoError(t, err)

	ids := make(map[string]core.ID, len(added))
	for _, profile := range added {
		ids[profile.Name] = profile.Id
	}

	ranker, err := NewRanker(profiles)
	require.NoError(t, err)
	return ids, ranker
}

func custodyStore(t *testing.T) *core.FactStore {
	t.Helper()
	store := core.NewFactStore()
	store.AdvanceTurn()
	store.Apply(&core.FactUpdate{
		Facts: []core.Fact{
			{Kind: core.FactPracticeArea, Value: "custody", Confidence: 0.9, SourceTurn: 1},
			{Kind: core.FactNeighborhood, Value: "Tarzana", Confidence: 0.9, SourceTurn: 1},
			{Kind: core.FactBudgetTier, Value: "low", Confidence: 0.8, SourceTurn: 1},
			{Kind: core.FactLanguage, Value: "spanish", Confidence: 0.85, SourceTurn: 1},
			{Kind: core.FactUrgency, Value: "high", Confidence: 0.7, SourceTurn: 1},
		},
	})
	return store
}

func dispatchFor(ids map[string]core.ID) *dispatch.Result {
	return &dispatch.Result{
		ByStrategy: map[string][]core.Candidate{
			dispatch.StrategyBaseline: {
				{ID: ids["Maria Alvarez"], Strategy: dispatch.StrategyBaseline, RawScore: 0.9,
					MatchedFields: []core.FactKind{core.FactPracticeArea, core.FactBudgetTier}},
				{ID: ids["David Chen"], Strategy: dispatch.StrategyBaseline, RawScore: 0.6,
					MatchedFields: []core.FactKind{core.FactPracticeArea}},
				{ID: ids["Angela Brooks"], Strategy: dispatch.StrategyBaseline, RawScore: 0.5,
					MatchedFields: []core.FactKind{core.FactPracticeArea}},
			},
			dispatch.StrategyNeighborhood: {
				{ID: ids["Maria Alvarez"], Strategy: dispatch.StrategyNeighborhood, RawScore: 1.0,
					MatchedFields: []core.FactKind{core.FactNeighborhood}},
			},
			dispatch.StrategyUrgency: {
				{ID: ids["Maria Alvarez"], Strategy: dispatch.StrategyUrgency, RawScore: 0.8,
					MatchedFields: []core.FactKind{core.FactUrgency}},
			},
		},
	}
}

func TestNewRanker(t *testing.T) {
	t.Run("requires a repository", func(t *testing.T) {
		_, err := NewRanker(nil)
		assert.ErrorIs(t, err, ErrProfilesRequired)
	})

	t.Run("rejects bad weights", func(t *testing.T) {
		_, ranker := seedProfiles(t)
		_, err := NewRanker(ranker.profiles, WithWeights(Weights{"nonsense": 1.0}))
		assert.ErrorIs(t, err, ErrInvalidWeights)
	})
}

func TestRank(t *testing.T) {
	ids, ranker := seedProfiles(t)
	ctx := context.Background()

	t.Run("validates input", func(t *testing.T) {
		_, err := ranker.Rank(ctx, nil, core.NewFactStore(), 5)
		assert.ErrorIs(t, err, ErrDispatchRequired)

		_, err = ranker.Rank(ctx, &dispatch.Result{}, nil, 5)
		assert.ErrorIs(t, err, ErrStoreRequired)
	})

	t.Run("empty dispatch yields empty results", func(t *testing.T) {
		results, err := ranker.Rank(ctx, &dispatch.Result{ByStrategy: map[string][]core.Candidate{}}, core.NewFactStore(), 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("best multi-strategy match wins", func(t *testing.T) {
		results, err := ranker.Rank(ctx, dispatchFor(ids), custodyStore(t), 5)
		require.NoError(t, err)
		require.Len(t, results, 3)

		top := results[0]
		assert.Equal(t, ids["Maria Alvarez"], top.CandidateID)
		assert.Equal(t, []string{dispatch.StrategyBaseline, dispatch.StrategyNeighborhood, dispatch.StrategyUrgency}, top.Strategies)
		assert.NotEmpty(t, top.MatchReasons)

		for _, result := range results {
			assert.GreaterOrEqual(t, result.CompositeScore, 0.0)
			assert.LessOrEqual(t, result.CompositeScore, 1.0)
			assert.LessOrEqual(t, result.Confidence, result.CompositeScore,
				"confidence never exceeds the composite")
		}
	})

	t.Run("evidence is max merged across strategies", func(t *testing.T) {
		results, err := ranker.Rank(ctx, dispatchFor(ids), custodyStore(t), 5)
		require.NoError(t, err)

		top := results[0]
		// Neighborhood evidence (1.0) beats the baseline city signal (0.9).
		assert.Equal(t, 1.0, top.DimensionScores[core.DimLocation])
		// Perfect practice-area overlap beats the 0.9 raw score.
		assert.Equal(t, 1.0, top.DimensionScores[core.DimPracticeArea])
	})

	t.Run("coverage scales confidence", func(t *testing.T) {
		// The same candidate with only a practice-area fact populates fewer
		// dimensions, so confidence drops even if the scores stay high.
		thin := core.NewFactStore()
		thin.AdvanceTurn()
		thin.Apply(&core.FactUpdate{Facts: []core.Fact{
			{Kind: core.FactPracticeArea, Value: "custody", Confidence: 0.9, SourceTurn: 1},
		}})

		full, err := ranker.Rank(ctx, dispatchFor(ids), custodyStore(t), 5)
		require.NoError(t, err)
		sparse, err := ranker.Rank(ctx, dispatchFor(ids), thin, 5)
		require.NoError(t, err)

		assert.Greater(t, full[0].Confidence, sparse[0].Confidence)
	})

	t.Run("top k truncates", func(t *testing.T) {
		results, err := ranker.Rank(ctx, dispatchFor(ids), custodyStore(t), 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		first, err := ranker.Rank(ctx, dispatchFor(ids), custodyStore(t), 5)
		require.NoError(t, err)
		for range 5 {
			again, err := ranker.Rank(ctx, dispatchFor(ids), custodyStore(t), 5)
			require.NoError(t, err)
			require.Len(t, again, len(first))
			for i := range first {
				assert.Equal(t, first[i].CandidateID, again[i].CandidateID)
				assert.Equal(t, first[i].Confidence, again[i].Confidence)
				assert.Equal(t, first[i].MatchReasons, again[i].MatchReasons)
			}
		}
	})

	t.Run("stronger composite outranks broader coverage", func(t *testing.T) {
		repo, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		t.Cleanup(func() { backend.Close() })

		added, err := repo.AddProfiles(ctx,
			&core.Profile{
				Name:              "Priya Raman",
				PracticeAreas:     []string{"custody", "divorce"},
				Neighborhood:      "Van Nuys",
				City:              "Los Angeles",
				Rating:            5.0,
				ResponseTimeHours: 1,
			},
			&core.Profile{
				Name:               "Omar Haddad",
				PracticeAreas:      []string{"custody"},
				Neighborhood:       "Tarzana",
				City:               "Los Angeles",
				CommunicationStyle: "patient",
				Rating:             2.5,
				ResponseTimeHours:  24,
			})
		require.NoError(t, err)

		store := core.NewFactStore()
		store.AdvanceTurn()
		store.Apply(&core.FactUpdate{Facts: []core.Fact{
			{Kind: core.FactPracticeArea, Value: "custody", Confidence: 0.9, SourceTurn: 1},
			{Kind: core.FactPracticeArea, Value: "divorce", Confidence: 0.9, SourceTurn: 1},
			{Kind: core.FactNeighborhood, Value: "Tarzana", Confidence: 0.9, SourceTurn: 1},
			{Kind: core.FactCommunicationStyle, Value: "patient", Confidence: 0.8, SourceTurn: 1},
		}})

		dispatched := &dispatch.Result{ByStrategy: map[string][]core.Candidate{
			dispatch.StrategyBaseline: {
				{ID: added[0].Id, Strategy: dispatch.StrategyBaseline, RawScore: 0.9},
				{ID: added[1].Id, Strategy: dispatch.StrategyBaseline, RawScore: 0.9},
			},
		}}

		narrow, err := NewRanker(repo)
		require.NoError(t, err)

		results, err := narrow.Rank(ctx, dispatched, store, 5)
		require.NoError(t, err)
		require.Len(t, results, 2)

		// Priya is perfect on fewer dimensions; Omar covers more dimensions
		// and carries the higher confidence. Composite score decides first.
		assert.Equal(t, "Priya Raman", results[0].Profile.Name)
		assert.Greater(t, results[0].CompositeScore, results[1].CompositeScore)
		assert.Less(t, results[0].Confidence, results[1].Confidence)
	})

	t.Run("unknown candidate ids are dropped", func(t *testing.T) {
		dispatched := &dispatch.Result{
			ByStrategy: map[string][]core.Candidate{
				dispatch.StrategyBaseline: {
					{ID: core.ID(424242), Strategy: dispatch.StrategyBaseline, RawScore: 0.9},
					{ID: ids["David Chen"], Strategy: dispatch.StrategyBaseline, RawScore: 0.6},
				},
			},
		}
		results, err := ranker.Rank(ctx, dispatched, custodyStore(t), 5)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, ids["David Chen"], results[0].CandidateID)
	})
}
