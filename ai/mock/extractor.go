package mock

import (
	"context"
	"strings"

	"github.com/barmatch/barmatch/ai"
	"github.com/barmatch/barmatch/core"
)

// MockFactExtractor is a test double for ai.FactExtractor.
// It allows custom behavior injection via function fields.
type MockFactExtractor struct {
	// ExtractFactsFunc is called by ExtractFacts if set.
	// If nil, uses a default keyword-based extraction.
	ExtractFactsFunc func(ctx context.Context, req ai.ExtractionRequest) (*core.FactUpdate, error)

	callCount int
}

// NewMockFactExtractor creates a mock fact extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockFactExtractor() *MockFactExtractor {
	return &MockFactExtractor{}
}

// defaultKeywords maps trigger words to the fact they imply.
var defaultKeywords = map[string]core.Fact{
	"custody":  {Kind: core.FactPracticeArea, Value: "custody", Confidence: 0.9},
	"divorce":  {Kind: core.FactPracticeArea, Value: "divorce", Confidence: 0.9},
	"eviction": {Kind: core.FactPracticeArea, Value: "eviction", Confidence: 0.9},
	"urgent":   {Kind: core.FactUrgency, Value: "high", Confidence: 0.8},
	"asap":     {Kind: core.FactUrgency, Value: "high", Confidence: 0.8},
	"spanish":  {Kind: core.FactLanguage, Value: "spanish", Confidence: 0.8},
	"mandarin": {Kind: core.FactLanguage, Value: "mandarin", Confidence: 0.8},
	"cheap":    {Kind: core.FactBudgetTier, Value: "low", Confidence: 0.7},
	"tarzana":  {Kind: core.FactNeighborhood, Value: "tarzana", Confidence: 0.85},
	"encino":   {Kind: core.FactNeighborhood, Value: "encino", Confidence: 0.85},
}

// ExtractFacts extracts simple mock facts from text.
// Default behavior: scans for a fixed keyword vocabulary and puts the whole
// message into the remainder.
func (m *MockFactExtractor) ExtractFacts(ctx context.Context, req ai.ExtractionRequest) (*core.FactUpdate, error) {
	m.callCount++

	if m.ExtractFactsFunc != nil {
		return m.ExtractFactsFunc(ctx, req)
	}

	update := &core.FactUpdate{Remainder: req.Text}
	for _, word := range strings.Fields(strings.ToLower(req.Text)) {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if fact, ok := defaultKeywords[word]; ok {
			fact.SourceTurn = req.Turn
			update.Facts = append(update.Facts, fact)
		}
	}
	return update, nil
}

// CallCount returns the number of times ExtractFacts was called.
func (m *MockFactExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockFactExtractor) Reset() {
	m.callCount = 0
	m.ExtractFactsFunc = nil
}
