package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := IDFromContent("(Maria Alvarez,Los Angeles,Tarzana)")
		b := IDFromContent("(Maria Alvarez,Los Angeles,Tarzana)")
		assert.Equal(t, a, b)
	})

	t.Run("distinct content distinct ids", func(t *testing.T) {
		a := IDFromContent("(Maria Alvarez,Los Angeles,Tarzana)")
		b := IDFromContent("(Maria Alvarez,Los Angeles,Encino)")
		assert.NotEqual(t, a, b)
	})
}

func TestFactKind(t *testing.T) {
	t.Run("all enumerated kinds are valid", func(t *testing.T) {
		for _, kind := range FactKinds {
			assert.True(t, kind.Valid(), string(kind))
		}
	})

	t.Run("unknown kind is invalid", func(t *testing.T) {
		assert.False(t, FactKind("favorite_color").Valid())
	})

	t.Run("cardinality", func(t *testing.T) {
		assert.True(t, FactPracticeArea.Multi())
		assert.True(t, FactLanguage.Multi())
		assert.True(t, FactSpecialNeed.Multi())
		assert.False(t, FactUrgency.Multi())
		assert.False(t, FactNeighborhood.Multi())
	})
}

func TestFactStoreApply(t *testing.T) {
	t.Run("single valued kind keeps higher confidence", func(t *testing.T) {
		store := NewFactStore()
		store.Apply(&FactUpdate{Facts: []Fact{
			{Kind: FactUrgency, Value: "high", Confidence: 0.9, SourceTurn: 1},
			{Kind: FactUrgency, Value: "low", Confidence: 0.4, SourceTurn: 2},
		}})

		fact, ok := store.Get(FactUrgency)
		require.True(t, ok)
		assert.Equal(t, "high", fact.Value)
	})

	t.Run("single valued kind prefers newer turn on equal confidence", func(t *testing.T) {
		store := NewFactStore()
		store.Apply(&FactUpdate{Facts: []Fact{
			{Kind: FactBudgetTier, Value: "high", Confidence: 0.8, SourceTurn: 1},
		}})
		store.Apply(&FactUpdate{Facts: []Fact{
			{Kind: FactBudgetTier, Value: "low", Confidence: 0.8, SourceTurn: 2},
		}})

		fact, ok := store.Get(FactBudgetTier)
		require.True(t, ok)
		assert.Equal(t, "low", fact.Value)
	})

	t.Run("list valued kinds accumulate", func(t *testing.T) {
		store := NewFactStore()
		store.Apply(&FactUpdate{Facts: []Fact{
			{Kind: FactPracticeArea, Value: "custody", Confidence: 0.9, SourceTurn: 1},
			{Kind: FactPracticeArea, Value: "divorce", Confidence: 0.7, SourceTurn: 1},
		}})

		assert.Equal(t, []string{"custody", "divorce"}, store.Values(FactPracticeArea))
	})

	t.Run("apply is idempotent", func(t *testing.T) {
		update := &FactUpdate{Facts: []Fact{
			{Kind: FactPracticeArea, Value: "custody", Confidence: 0.9, SourceTurn: 1},
			{Kind: FactLanguage, Value: "spanish", Confidence: 0.8, SourceTurn: 1},
			{Kind: FactUrgency, Value: "high", Confidence: 0.6, SourceTurn: 1},
		}}

		once := NewFactStore()
		once.Apply(update)

		twice := NewFactStore()
		twice.Apply(update)
		twice.Apply(update)

		assert.Equal(t, once.Snapshot(), twice.Snapshot())
	})

	t.Run("same kind merging is commutative", func(t *testing.T) {
		a := Fact{Kind: FactNeighborhood, Value: "tarzana", Confidence: 0.7, SourceTurn: 1}
		b := Fact{Kind: FactNeighborhood, Value: "encino", Confidence: 0.7, SourceTurn: 1}

		ab := NewFactStore()
		ab.Apply(&FactUpdate{Facts: []Fact{a, b}})

		ba := NewFactStore()
		ba.Apply(&FactUpdate{Facts: []Fact{b, a}})

		assert.Equal(t, ab.Snapshot(), ba.Snapshot())
	})

	t.Run("duplicate list value keeps best fact", func(t *testing.T) {
		store := NewFactStore()
		store.Apply(&FactUpdate{Facts: []Fact{
			{Kind: FactLanguage, Value: "Spanish", Confidence: 0.5, SourceTurn: 1},
			{Kind: FactLanguage, Value: "spanish", Confidence: 0.9, SourceTurn: 2},
		}})

		facts := store.GetAll(FactLanguage)
		require.Len(t, facts, 1)
		assert.Equal(t, 0.9, facts[0].Confidence)
	})

	t.Run("invalid facts are skipped", func(t *testing.T) {
		store := NewFactStore()
		store.Apply(&FactUpdate{Facts: []Fact{
			{Kind: FactKind("nonsense"), Value: "x", Confidence: 0.5},
			{Kind: FactUrgency, Value: "", Confidence: 0.5},
			{Kind: FactUrgency, Value: "high", Confidence: 1.5},
		}})

		assert.True(t, store.Empty())
	})

	t.Run("remainder tracks latest turn", func(t *testing.T) {
		store := NewFactStore()
		store.Apply(&FactUpdate{Remainder: "someone who listens"})
		assert.Equal(t, "someone who listens", store.Remainder())

		store.Apply(&FactUpdate{Facts: []Fact{{Kind: FactUrgency, Value: "high", Confidence: 1, SourceTurn: 2}}})
		assert.Equal(t, "someone who listens", store.Remainder(), "empty remainder must not clear previous text")
	})
}

func TestFactStoreClone(t *testing.T) {
	store := NewFactStore()
	store.AdvanceTurn()
	store.Apply(&FactUpdate{
		Facts:     []Fact{{Kind: FactPracticeArea, Value: "custody", Confidence: 0.9, SourceTurn: 1}},
		Remainder: "prefers evenings",
	})

	clone := store.Clone()
	clone.Apply(&FactUpdate{
		Facts: []Fact{{Kind: FactPracticeArea, Value: "divorce", Confidence: 0.9, SourceTurn: 2}},
	})

	assert.Equal(t, []string{"custody"}, store.Values(FactPracticeArea))
	assert.Equal(t, []string{"custody", "divorce"}, clone.Values(FactPracticeArea))
	assert.Equal(t, store.Turn(), clone.Turn())
	assert.Equal(t, "prefers evenings", clone.Remainder())
}

func TestFactStoreRestore(t *testing.T) {
	store := NewFactStore()
	store.Restore([]Fact{
		{Kind: FactLocation, Value: "los angeles", Confidence: 0.8, SourceTurn: 3},
		{Kind: FactLanguage, Value: "spanish", Confidence: 0.7, SourceTurn: 2},
	})

	assert.True(t, store.Has(FactLocation))
	assert.True(t, store.Has(FactLanguage))
	assert.Equal(t, 3, store.Turn(), "turn counter resumes past the latest restored fact")
}

func TestFactUpdateEmpty(t *testing.T) {
	var nilUpdate *FactUpdate
	assert.True(t, nilUpdate.Empty())
	assert.True(t, (&FactUpdate{}).Empty())
	assert.False(t, (&FactUpdate{Remainder: "x"}).Empty())
	assert.False(t, (&FactUpdate{Facts: []Fact{{Kind: FactUrgency, Value: "high", Confidence: 1}}}).Empty())
}
