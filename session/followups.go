package session

import "github.com/barmatch/barmatch/core"

const maxFollowups = 3

// followups suggests the questions most likely to sharpen the next search:
// the highest-signal facts still missing, plus a broadening nudge when the
// current criteria matched nothing.
func followups(store *core.FactStore, resultCount int) []string {
	var suggestions []string

	if resultCount == 0 && !store.Empty() {
		suggestions = append(suggestions, "Nothing matched all of that. Could you widen the area or budget?")
	}
	if !store.Has(core.FactPracticeArea) {
		suggestions = append(suggestions, "What kind of legal matter do you need help with?")
	}
	if !store.Has(core.FactNeighborhood) && !store.Has(core.FactLocation) {
		suggestions = append(suggestions, "What part of town works best for you?")
	}
	if !store.Has(core.FactBudgetTier) {
		suggestions = append(suggestions, "Do you have a budget range in mind?")
	}
	if !store.Has(core.FactUrgency) {
		suggestions = append(suggestions, "How soon do you need to talk to someone?")
	}

	if len(suggestions) > maxFollowups {
		suggestions = suggestions[:maxFollowups]
	}
	return suggestions
}
