package rank

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/barmatch/barmatch/core"
)

// Weights maps each scoring dimension to its share of the composite score.
// Weights are relative; the composite normalizes by the weight mass of the
// populated dimensions, so a table does not have to sum to one.
type Weights map[core.Dimension]float64

// DefaultWeights returns the standard weight table. Practice area dominates,
// the soft-fit dimensions trail.
func DefaultWeights() Weights {
	return Weights{
		core.DimPracticeArea:       0.25,
		core.DimLocation:           0.15,
		core.DimBudget:             0.15,
		core.DimLanguage:           0.12,
		core.DimAvailability:       0.10,
		core.DimCommunicationStyle: 0.07,
		core.DimCulturalFit:        0.06,
		core.DimRating:             0.06,
		core.DimResponseTime:       0.04,
	}
}

// Validate checks that every dimension is known, every weight is positive,
// and every dimension is covered.
func (w Weights) Validate() error {
	for dim, weight := range w {
		if !dim.Valid() {
			return fmt.Errorf("%w: unknown dimension %q", ErrInvalidWeights, dim)
		}
		if weight <= 0 {
			return fmt.Errorf("%w: dimension %q has non-positive weight %v", ErrInvalidWeights, dim, weight)
		}
	}
	for _, dim := range core.Dimensions {
		if _, ok := w[dim]; !ok {
			return fmt.Errorf("%w: dimension %q missing", ErrInvalidWeights, dim)
		}
	}
	return nil
}

// LoadWeights reads a weight table from a YAML file. Dimensions omitted from
// the file keep their default weight.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	loaded := make(map[string]float64)
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, err
	}

	weights := DefaultWeights()
	for name, weight := range loaded {
		weights[core.Dimension(name)] = weight
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return weights, nil
}
