package rank

import (
	"context"
	"log/slog"
	"sort"

	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/dispatch"
	"github.com/barmatch/barmatch/storage"
)

const defaultTopK = 5

// Ranker fans strategy results in, scores each surviving candidate across
// the fit dimensions, and keeps the top of the list. Output depends only on
// the dispatch result, the facts, and the profiles: no model in the loop.
type Ranker struct {
	profiles storage.ProfileRepository
	weights  Weights
	logger   *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithWeights replaces the default weight table.
func WithWeights(weights Weights) Option {
	return func(r *Ranker) error {
		if err := weights.Validate(); err != nil {
			return err
		}
		r.weights = weights
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRanker creates a ranker backed by the given profile repository.
func NewRanker(profiles storage.ProfileRepository, opts ...Option) (*Ranker, error) {
	if profiles == nil {
		return nil, ErrProfilesRequired
	}

	r := &Ranker{
		profiles: profiles,
		weights:  DefaultWeights(),
		logger:   slog.Default().With("component", "ranker"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Rank merges the dispatched candidates, scores them against the accumulated
// facts, and returns the top topK results in descending composite-score
// order. An empty dispatch yields an empty slice, not an error.
func (r *Ranker) Rank(ctx context.Context, dispatched *dispatch.Result, store *core.FactStore, topK int) ([]*core.MergedResult, error) {
	if dispatched == nil {
		return nil, ErrDispatchRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	groups := mergeCandidates(dispatched)
	if len(groups) == 0 {
		return []*core.MergedResult{}, nil
	}

	ids := make([]core.ID, len(groups))
	for i, g := range groups {
		ids[i] = g.id
	}
	profiles, err := r.profiles.GetProfiles(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byID := make(map[core.ID]*core.Profile, len(profiles))
	for _, profile := range profiles {
		byID[profile.Id] = profile
	}

	type ranked struct {
		result    *core.MergedResult
		discovery int
	}
	results := make([]ranked, 0, len(groups))
	for _, g := range groups {
		profile, ok := byID[g.id]
		if !ok {
			// Index and storage can drift; a candidate without a profile
			// cannot be shown.
			r.logger.Warn("candidate has no stored profile", "id", g.id)
			continue
		}

		scores := scoreDimensions(g, profile, store)
		compositeScore, confidence := composite(scores, r.weights)

		strategies := dedupe(g.strategies)
		sort.Strings(strategies)

		results = append(results, ranked{
			result: &core.MergedResult{
				CandidateID:     g.id,
				Profile:         profile,
				DimensionScores: scores,
				CompositeScore:  compositeScore,
				Confidence:      confidence,
				Strategies:      strategies,
				MatchReasons:    matchReasons(scores, r.weights, profile, store),
			},
			discovery: g.discovery,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i].result, results[j].result
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Profile.Rating != b.Profile.Rating {
			return a.Profile.Rating > b.Profile.Rating
		}
		if len(a.Strategies) != len(b.Strategies) {
			return len(a.Strategies) > len(b.Strategies)
		}
		return results[i].discovery < results[j].discovery
	})

	if len(results) > topK {
		results = results[:topK]
	}

	out := make([]*core.MergedResult, len(results))
	for i, res := range results {
		out[i] = res.result
	}
	return out, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
