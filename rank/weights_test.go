package rank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/barmatch/barmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeights(t *testing.T) {
	weights := DefaultWeights()
	require.NoError(t, weights.Validate())
	assert.Len(t, weights, len(core.Dimensions))
}

func TestWeightsValidate(t *testing.T) {
	t.Run("unknown dimension", func(t *testing.T) {
		weights := DefaultWeights()
		weights["astrology"] = 0.5
		assert.ErrorIs(t, weights.Validate(), ErrInvalidWeights)
	})

	t.Run("non-positive weight", func(t *testing.T) {
		weights := DefaultWeights()
		weights[core.DimRating] = 0
		assert.ErrorIs(t, weights.Validate(), ErrInvalidWeights)
	})

	t.Run("missing dimension", func(t *testing.T) {
		weights := DefaultWeights()
		delete(weights, core.DimRating)
		assert.ErrorIs(t, weights.Validate(), ErrInvalidWeights)
	})
}

func TestLoadWeights(t *testing.T) {
	t.Run("overrides merge with defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "weights.yaml")
		require.NoError(t, os.WriteFile(path, []byte("practice_area: 0.5\nlanguage: 0.2\n"), 0644))

		weights, err := LoadWeights(path)
		require.NoError(t, err)
		assert.Equal(t, 0.5, weights[core.DimPracticeArea])
		assert.Equal(t, 0.2, weights[core.DimLanguage])
		assert.Equal(t, DefaultWeights()[core.DimRating], weights[core.DimRating])
	})

	t.Run("rejects unknown dimensions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "weights.yaml")
		require.NoError(t, os.WriteFile(path, []byte("astrology: 0.5\n"), 0644))

		_, err := LoadWeights(path)
		assert.ErrorIs(t, err, ErrInvalidWeights)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadWeights(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
