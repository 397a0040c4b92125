package ai

import (
	"context"

	"github.com/barmatch/barmatch/core"
)

// FactExtractor turns a raw user utterance into a normalized fact update.
// Implementations must be thread-safe for concurrent use.
type FactExtractor interface {
	// ExtractFacts analyzes one utterance in the context of the facts already
	// known for the session and returns the partial update it implies.
	// Implementations own prompt and schema discipline: a reply that fails
	// schema validation is retried once with a stricter reminder, and if the
	// retry also fails the best-effort partial update is returned together
	// with ErrNonConformantReply. The returned update is never nil unless the
	// error is a transport failure.
	ExtractFacts(ctx context.Context, req ExtractionRequest) (*core.FactUpdate, error)
}

// Narrator writes short personalized explanations of a match result set.
// Implementations must be thread-safe for concurrent use.
type Narrator interface {
	// Narrate generates narrative text for the given request. onFragment is
	// invoked for every streamed chunk as it arrives; the complete text is
	// returned once generation finishes. onFragment may be nil.
	Narrate(ctx context.Context, req NarrationRequest, onFragment func(fragment string)) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages FactExtractor and Narrator
// instances, ensuring they share configuration and resources appropriately.
type Provider interface {
	// FactExtractor returns the intent extraction service.
	// The returned FactExtractor is safe for concurrent use.
	FactExtractor() FactExtractor

	// Narrator returns the narrative personalization service.
	// The returned Narrator is safe for concurrent use.
	Narrator() Narrator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
