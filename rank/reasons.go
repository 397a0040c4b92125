package rank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/barmatch/barmatch/core"
)

const (
	maxReasons      = 4
	reasonThreshold = 0.5
)

// matchReasons derives the explanations shown next to a result. They are
// purely a function of the scores, profile, and facts: same inputs, same
// reasons, whatever the narrator does.
func matchReasons(scores map[core.Dimension]float64, weights Weights, profile *core.Profile, store *core.FactStore) []string {
	dims := make([]core.Dimension, 0, len(scores))
	for dim, score := range scores {
		if score >= reasonThreshold {
			dims = append(dims, dim)
		}
	}

	// Highest weight first; the enumeration order settles equal weights.
	order := make(map[core.Dimension]int, len(core.Dimensions))
	for i, dim := range core.Dimensions {
		order[dim] = i
	}
	sort.Slice(dims, func(i, j int) bool {
		wi, wj := weights[dims[i]], weights[dims[j]]
		if wi != wj {
			return wi > wj
		}
		return order[dims[i]] < order[dims[j]]
	})

	reasons := make([]string, 0, maxReasons)
	for _, dim := range dims {
		if reason := reasonFor(dim, profile, store); reason != "" {
			reasons = append(reasons, reason)
		}
		if len(reasons) == maxReasons {
			break
		}
	}
	return reasons
}

func reasonFor(dim core.Dimension, profile *core.Profile, store *core.FactStore) string {
	switch dim {
	case core.DimPracticeArea:
		if areas := sharedFold(store.Values(core.FactPracticeArea), profile.PracticeAreas); len(areas) > 0 {
			return "Handles " + joinAnd(areas) + " cases"
		}
		return "Practices in your area of need"
	case core.DimLocation:
		if fact, ok := store.Get(core.FactNeighborhood); ok && strings.EqualFold(fact.Value, profile.Neighborhood) {
			return "Located in " + profile.Neighborhood
		}
		if profile.City != "" {
			return "Based in " + profile.City
		}
		return "Close to you"
	case core.DimBudget:
		if wantsPaymentPlans(store) && profile.PaymentPlans {
			return "Offers payment plans"
		}
		return "Fits your budget"
	case core.DimLanguage:
		if langs := sharedFold(store.Values(core.FactLanguage), profile.Languages); len(langs) > 0 {
			return "Speaks " + joinAnd(titleCase(langs))
		}
		return "Speaks your language"
	case core.DimAvailability:
		return "Available for urgent matters right now"
	case core.DimCulturalFit:
		return "Shares your cultural background"
	case core.DimCommunicationStyle:
		if profile.CommunicationStyle != "" {
			return "Known for a " + profile.CommunicationStyle + " communication style"
		}
		return ""
	case core.DimRating:
		if profile.ReviewCount > 0 {
			return fmt.Sprintf("Rated %.1f across %d reviews", profile.Rating, profile.ReviewCount)
		}
		return ""
	case core.DimResponseTime:
		if profile.ResponseTimeHours > 0 && profile.ResponseTimeHours <= 4 {
			return "Typically responds within hours"
		}
		return ""
	default:
		return ""
	}
}

// sharedFold returns the wanted values present in have, preserving the order
// of want.
func sharedFold(want, have []string) []string {
	var shared []string
	for _, w := range want {
		if containsFold(have, w) {
			shared = append(shared, w)
		}
	}
	return shared
}

func joinAnd(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values[:len(values)-1], ", ") + " and " + values[len(values)-1]
	}
}

func titleCase(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		out[i] = strings.ToUpper(v[:1]) + v[1:]
	}
	return out
}
