package mock

import (
	"context"
	"strings"

	"github.com/barmatch/barmatch/ai"
)

// MockNarrator is a test double for ai.Narrator.
// It allows custom behavior injection via function fields.
type MockNarrator struct {
	// NarrateFunc is called by Narrate if set.
	// If nil, emits two canned fragments.
	NarrateFunc func(ctx context.Context, req ai.NarrationRequest, onFragment func(string)) (string, error)

	callCount int
}

// NewMockNarrator creates a mock narrator with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockNarrator().
func NewMockNarrator() *MockNarrator {
	return &MockNarrator{}
}

// Narrate emits canned fragments naming the top result, if any.
func (m *MockNarrator) Narrate(ctx context.Context, req ai.NarrationRequest, onFragment func(string)) (string, error) {
	m.callCount++

	if m.NarrateFunc != nil {
		return m.NarrateFunc(ctx, req, onFragment)
	}

	fragments := []string{"Here are professionals ", "matched to your needs."}
	if len(req.Results) > 0 {
		fragments = []string{req.Results[0].Name, " looks like a strong match."}
	}
	for _, fragment := range fragments {
		if onFragment != nil {
			onFragment(fragment)
		}
	}
	return strings.Join(fragments, ""), nil
}

// CallCount returns the number of times Narrate was called.
func (m *MockNarrator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockNarrator) Reset() {
	m.callCount = 0
	m.NarrateFunc = nil
}
