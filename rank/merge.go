package rank

import (
	"sort"
	"strings"

	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/dispatch"
)

// group is one candidate after fan-in, before profile scoring.
type group struct {
	id         core.ID
	strategies []string
	evidence   map[core.Dimension]float64
	discovery  int
}

// fieldDimensions routes a matched fact kind to the dimension its raw score
// feeds. Neighborhood evidence lands on location; urgency on availability.
var fieldDimensions = map[core.FactKind]core.Dimension{
	core.FactPracticeArea:       core.DimPracticeArea,
	core.FactLocation:           core.DimLocation,
	core.FactNeighborhood:       core.DimLocation,
	core.FactBudgetTier:         core.DimBudget,
	core.FactSpecialNeed:        core.DimBudget,
	core.FactUrgency:            core.DimAvailability,
	core.FactLanguage:           core.DimLanguage,
	core.FactCommunicationStyle: core.DimCommunicationStyle,
	core.FactCulturalBackground: core.DimCulturalFit,
}

// mergeCandidates groups per-strategy candidates by id. Strategies are walked
// in sorted name order so discovery order, and with it the final tie-break,
// is independent of fan-in timing.
func mergeCandidates(dispatched *dispatch.Result) []*group {
	names := make([]string, 0, len(dispatched.ByStrategy))
	for name := range dispatched.ByStrategy {
		names = append(names, name)
	}
	sort.Strings(names)

	byID := make(map[core.ID]*group)
	var groups []*group
	for _, name := range names {
		for _, candidate := range dispatched.ByStrategy[name] {
			g, ok := byID[candidate.ID]
			if !ok {
				g = &group{
					id:        candidate.ID,
					evidence:  make(map[core.Dimension]float64),
					discovery: len(groups),
				}
				byID[candidate.ID] = g
				groups = append(groups, g)
			}
			g.strategies = append(g.strategies, name)

			score := clamp01(candidate.RawScore)
			for _, field := range candidate.MatchedFields {
				dim, ok := fieldDimensions[field]
				if !ok {
					continue
				}
				if score > g.evidence[dim] {
					g.evidence[dim] = score
				}
			}
		}
	}
	return groups
}

// scoreDimensions produces the final per-dimension scores for one candidate:
// direct profile-vs-facts comparisons, max-merged with whatever evidence the
// strategies supplied. Rating and response time always populate; fact-driven
// dimensions populate only when the user has stated the corresponding fact.
func scoreDimensions(g *group, profile *core.Profile, store *core.FactStore) map[core.Dimension]float64 {
	scores := make(map[core.Dimension]float64, len(core.Dimensions))
	for dim, score := range g.evidence {
		scores[dim] = score
	}

	// A stated fact populates its dimension even when the profile scores
	// zero on it; absence of evidence is what leaves a dimension out.
	put := func(dim core.Dimension, score float64) {
		score = clamp01(score)
		if old, ok := scores[dim]; !ok || score > old {
			scores[dim] = score
		}
	}

	if want := store.Values(core.FactPracticeArea); len(want) > 0 {
		put(core.DimPracticeArea, overlapFraction(want, profile.PracticeAreas))
	}

	if fact, ok := store.Get(core.FactNeighborhood); ok {
		if strings.EqualFold(fact.Value, profile.Neighborhood) {
			put(core.DimLocation, 1.0)
		}
	}
	if fact, ok := store.Get(core.FactLocation); ok {
		if strings.EqualFold(fact.Value, profile.City) {
			put(core.DimLocation, 0.7)
		}
	}

	if fact, ok := store.Get(core.FactBudgetTier); ok {
		if containsFold(profile.BudgetTiers, fact.NormalValue()) {
			put(core.DimBudget, 1.0)
		} else {
			put(core.DimBudget, 0.2)
		}
	}
	if wantsPaymentPlans(store) && profile.PaymentPlans {
		put(core.DimBudget, 1.0)
	}

	if want := store.Values(core.FactLanguage); len(want) > 0 {
		put(core.DimLanguage, overlapFraction(want, profile.Languages))
	}

	if fact, ok := store.Get(core.FactUrgency); ok && fact.NormalValue() == "high" {
		if profile.AvailableNow {
			put(core.DimAvailability, 1.0)
		} else {
			put(core.DimAvailability, 0.2)
		}
	}

	if want := store.Values(core.FactCulturalBackground); len(want) > 0 {
		put(core.DimCulturalFit, overlapFraction(want, profile.CulturalBackgrounds))
	}

	if fact, ok := store.Get(core.FactCommunicationStyle); ok {
		if strings.EqualFold(fact.Value, profile.CommunicationStyle) {
			put(core.DimCommunicationStyle, 1.0)
		}
	}

	put(core.DimRating, profile.Rating/5.0)
	put(core.DimResponseTime, responseTimeScore(profile.ResponseTimeHours))

	return scores
}

// composite computes the weighted average over populated dimensions, and the
// confidence as that average scaled by dimension coverage.
func composite(scores map[core.Dimension]float64, weights Weights) (compositeScore, confidence float64) {
	var sum, mass float64
	for dim, score := range scores {
		weight := weights[dim]
		sum += weight * score
		mass += weight
	}
	if mass == 0 {
		return 0, 0
	}
	compositeScore = sum / mass
	confidence = compositeScore * float64(len(scores)) / float64(len(core.Dimensions))
	return compositeScore, confidence
}

func wantsPaymentPlans(store *core.FactStore) bool {
	for _, need := range store.Values(core.FactSpecialNeed) {
		if strings.Contains(need, "payment") {
			return true
		}
	}
	return false
}

// responseTimeScore maps typical response latency onto 0-1.
func responseTimeScore(hours float64) float64 {
	switch {
	case hours <= 0:
		// Unreported; assume middling.
		return 0.5
	case hours <= 1:
		return 1.0
	case hours <= 4:
		return 0.9
	case hours <= 12:
		return 0.7
	case hours <= 24:
		return 0.5
	case hours <= 48:
		return 0.3
	default:
		return 0.1
	}
}

// overlapFraction returns the share of wanted values present in have,
// case-insensitively.
func overlapFraction(want, have []string) float64 {
	if len(want) == 0 {
		return 0
	}
	matched := 0
	for _, w := range want {
		if containsFold(have, w) {
			matched++
		}
	}
	return float64(matched) / float64(len(want))
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
