package ai

import "github.com/barmatch/barmatch/core"

// ExtractionRequest carries one utterance plus the bounded session context
// the model needs to interpret it.
type ExtractionRequest struct {
	// KnownFacts is the current fact-store snapshot, included so the model
	// can resolve references like "the same area" across turns.
	KnownFacts []core.Fact

	// Text is the raw user utterance. Must be non-empty.
	Text string

	// Turn is stamped onto every extracted fact as its SourceTurn.
	Turn int
}

// NarrationRequest describes a ranked result set for personalization.
type NarrationRequest struct {
	// Query is the latest user utterance.
	Query string

	// Facts is the fact-store snapshot the results were matched against.
	Facts []core.Fact

	// Results summarizes the ranked professionals, best first.
	Results []ResultSummary
}

// ResultSummary is the narrator's view of one merged result. It carries the
// deterministic match reasons so the narrative can only elaborate on them,
// never contradict them.
type ResultSummary struct {
	Name    string
	Reasons []string
}

// UrgencyLevels defines the valid values for urgency facts.
var UrgencyLevels = []string{"low", "medium", "high"}

// BudgetTiers defines the valid values for budget_tier facts.
var BudgetTiers = []string{"low", "medium", "high", "premium"}
