package memory

import (
	"context"
	"testing"

	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfiles() []*core.Profile {
	return []*core.Profile{
		{
			Name:               "Maria Alvarez",
			PracticeAreas:      []string{"custody", "divorce"},
			Languages:          []string{"spanish", "english"},
			Neighborhood:       "Tarzana",
			City:               "Los Angeles",
			Lat:                34.17, Lng: -118.54,
			BudgetTiers:        []string{"low", "medium"},
			PaymentPlans:       true,
			Rating:             4.8,
			ReviewCount:        120,
			ResponseTimeHours:  2,
			AvailableNow:       true,
			CommunicationStyle: "patient",
			Bio:                "Family law attorney focused on custody disputes, known for a patient approach.",
		},
		{
			Name:              "David Chen",
			PracticeAreas:     []string{"custody"},
			Languages:         []string{"mandarin", "english"},
			Neighborhood:      "Encino",
			City:              "Los Angeles",
			Lat:               34.16, Lng: -118.50,
			BudgetTiers:       []string{"medium", "high"},
			Rating:            4.5,
			ReviewCount:       80,
			ResponseTimeHours: 12,
			Bio:               "Custody and family law practice serving the San Fernando Valley.",
		},
		{
			Name:              "Angela Brooks",
			PracticeAreas:     []string{"custody", "adoption"},
			Languages:         []string{"english"},
			Neighborhood:      "Downtown",
			City:              "Long Beach",
			Lat:               33.77, Lng: -118.19,
			BudgetTiers:       []string{"high", "premium"},
			Rating:            4.9,
			ReviewCount:       200,
			ResponseTimeHours: 24,
			Bio:               "Boutique family law firm handling complex custody matters.",
		},
		{
			Name:          "Omar Haddad",
			PracticeAreas: []string{"immigration"},
			Languages:     []string{"arabic", "english"},
			Neighborhood:  "Westwood",
			City:          "Los Angeles",
			Lat:           34.06, Lng: -118.44,
			BudgetTiers:   []string{"low"},
			Rating:        4.2,
			ReviewCount:   45,
			Bio:           "Immigration attorney helping families navigate visas and green cards.",
		},
	}
}

func newTestIndex(t *testing.T) *Memory {
	t.Helper()
	idx, err := New()
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(testProfiles()...))
	return idx
}

func findByName(t *testing.T, idx *Memory, name string) core.ID {
	t.Helper()
	for _, p := range testProfiles() {
		if p.Name == name {
			return core.IDFromContent(p.ContentKey())
		}
	}
	t.Fatalf("unknown fixture profile %q", name)
	return 0
}

func TestUpsert(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)

	t.Run("assigns content ids", func(t *testing.T) {
		profile := &core.Profile{Name: "Maria Alvarez", City: "Los Angeles", Neighborhood: "Tarzana", Rating: 4.8}
		require.NoError(t, idx.Upsert(profile))
		assert.Equal(t, core.IDFromContent(profile.ContentKey()), profile.Id)
		assert.Equal(t, 1, idx.Len())
	})

	t.Run("rejects invalid profiles", func(t *testing.T) {
		err := idx.Upsert(&core.Profile{Rating: 4.0})
		assert.ErrorIs(t, err, core.ErrEmptyProfileName)
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		profile := &core.Profile{Name: "Maria Alvarez", City: "Los Angeles", Neighborhood: "Tarzana", Rating: 5.0}
		require.NoError(t, idx.Upsert(profile))
		assert.Equal(t, 1, idx.Len())
	})
}

func TestSearchStructured(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	t.Run("practice area filter", func(t *testing.T) {
		hits, err := idx.Search(ctx, index.Query{PracticeAreas: []string{"custody"}})
		require.NoError(t, err)
		require.Len(t, hits, 3)
		for _, hit := range hits {
			assert.NotEqual(t, findByName(t, idx, "Omar Haddad"), hit.CandidateId)
			assert.Contains(t, hit.MatchedFields, core.FactPracticeArea)
		}
	})

	t.Run("budget filter excludes non overlapping tiers", func(t *testing.T) {
		hits, err := idx.Search(ctx, index.Query{
			PracticeAreas: []string{"custody"},
			BudgetTiers:   []string{"low"},
		})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, findByName(t, idx, "Maria Alvarez"), hits[0].CandidateId)
	})

	t.Run("language filter", func(t *testing.T) {
		hits, err := idx.Search(ctx, index.Query{Languages: []string{"mandarin"}})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, findByName(t, idx, "David Chen"), hits[0].CandidateId)
	})

	t.Run("available now filter", func(t *testing.T) {
		hits, err := idx.Search(ctx, index.Query{PracticeAreas: []string{"custody"}, AvailableNow: true})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, findByName(t, idx, "Maria Alvarez"), hits[0].CandidateId)
		assert.Contains(t, hits[0].MatchedFields, core.FactUrgency)
	})

	t.Run("empty query returns nothing", func(t *testing.T) {
		hits, err := idx.Search(ctx, index.Query{})
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestSearchNeighborhoodRadius(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	t.Run("tight radius keeps the neighborhood and close neighbors", func(t *testing.T) {
		hits, err := idx.Search(ctx, index.Query{Neighborhood: "Tarzana", RadiusMiles: 5})
		require.NoError(t, err)
		require.Len(t, hits, 2, "Tarzana exact plus Encino within 5 miles")
		assert.Equal(t, findByName(t, idx, "Maria Alvarez"), hits[0].CandidateId, "exact neighborhood outranks nearby")
	})

	t.Run("wide radius reaches further profiles", func(t *testing.T) {
		hits, err := idx.Search(ctx, index.Query{Neighborhood: "Tarzana", RadiusMiles: 50})
		require.NoError(t, err)
		ids := make([]core.ID, 0, len(hits))
		for _, hit := range hits {
			ids = append(ids, hit.CandidateId)
		}
		assert.Contains(t, ids, findByName(t, idx, "Angela Brooks"), "Long Beach is inside 50 miles")
	})

	t.Run("city search with default radius", func(t *testing.T) {
		hits, err := idx.Search(ctx, index.Query{City: "Los Angeles"})
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		for _, hit := range hits {
			assert.Contains(t, hit.MatchedFields, core.FactLocation)
		}
	})
}

func TestSearchText(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	t.Run("relevance ordering", func(t *testing.T) {
		hits, err := idx.Search(ctx, index.Query{Text: "patient custody attorney"})
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, findByName(t, idx, "Maria Alvarez"), hits[0].CandidateId)
	})

	t.Run("communication style overlap is evidenced", func(t *testing.T) {
		hits, err := idx.Search(ctx, index.Query{Text: "patient"})
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Contains(t, hits[0].MatchedFields, core.FactCommunicationStyle)
	})

	t.Run("no overlap no hits", func(t *testing.T) {
		hits, err := idx.Search(ctx, index.Query{Text: "maritime salvage zoning"})
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestSearchDeterminism(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	query := index.Query{PracticeAreas: []string{"custody"}}
	first, err := idx.Search(ctx, query)
	require.NoError(t, err)
	for range 5 {
		again, err := idx.Search(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearchLimit(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Search(context.Background(), index.Query{PracticeAreas: []string{"custody"}, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}
