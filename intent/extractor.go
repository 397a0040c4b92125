package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/barmatch/barmatch/ai"
	"github.com/barmatch/barmatch/core"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxRetries   = 2
	defaultRetryBackoff = 250 * time.Millisecond
)

// Extractor turns raw user utterances into fact updates. It owns the retry
// budget around the language backend and degrades to keyword heuristics when
// the backend stays unreachable, so a turn is never dropped.
type Extractor struct {
	model      ai.FactExtractor
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithTimeout sets the per-call timeout for the language backend.
// Default is 10s.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Extractor) error {
		if timeout > 0 {
			e.timeout = timeout
		}
		return nil
	}
}

// WithRetry sets the transport retry budget: maxRetries additional attempts
// with exponential backoff starting at base.
// Defaults are 2 retries and a 250ms base.
func WithRetry(maxRetries int, base time.Duration) Option {
	return func(e *Extractor) error {
		if maxRetries >= 0 {
			e.maxRetries = maxRetries
		}
		if base > 0 {
			e.backoff = base
		}
		return nil
	}
}

// NewExtractor creates a new intent extractor backed by the provider's
// fact-extraction service.
func NewExtractor(provider ai.Provider, opts ...Option) (*Extractor, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}

	e := &Extractor{
		model:      provider.FactExtractor(),
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
		backoff:    defaultRetryBackoff,
		logger:     slog.Default().With("component", "intent-extractor"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Extract produces the fact update implied by one utterance. The store is
// read, never mutated; applying the update is the caller's job so extraction
// stays unit-testable without shared state.
//
// The returned update is always non-nil when the error is nil or wraps
// ErrExtractionDegraded. A non-conformant model reply contributes its
// best-effort partial parse; a dead backend yields heuristic keyword facts.
func (e *Extractor) Extract(ctx context.Context, store *core.FactStore, text string) (*core.FactUpdate, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	req := ai.ExtractionRequest{
		KnownFacts: store.Snapshot(),
		Text:       text,
		Turn:       store.Turn(),
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			delay := e.backoff << (attempt - 1)
			e.logger.Debug("retrying extraction", "attempt", attempt+1, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		update, err := e.model.ExtractFacts(callCtx, req)
		cancel()

		if err == nil {
			return update, nil
		}

		// A non-conformant reply already carries the model's best-effort
		// partial parse; schema retries happened inside the client.
		if errors.Is(err, ai.ErrNonConformantReply) && update != nil {
			e.logger.Warn("using partial parse from non-conformant reply", "facts", len(update.Facts))
			return update, nil
		}

		// The session cancelling its cycle is not a backend failure;
		// surface it instead of degrading.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		e.logger.Warn("extraction attempt failed", "attempt", attempt+1, "err", err)
	}

	return e.fallback(text, store.Turn(), lastErr)
}

// fallback produces a heuristic update when the model is unavailable.
func (e *Extractor) fallback(text string, turn int, cause error) (*core.FactUpdate, error) {
	update := HeuristicUpdate(text, turn)
	e.logger.Warn("extraction degraded to heuristics",
		"facts", len(update.Facts),
		"cause", cause)
	return update, fmt.Errorf("%w: %w", ErrExtractionDegraded, cause)
}
