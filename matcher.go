// Copyright 2025 Barmatch Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package barmatch

import (
	"context"
	"log/slog"

	"github.com/barmatch/barmatch/ai"
	"github.com/barmatch/barmatch/ai/openai"
	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/dispatch"
	"github.com/barmatch/barmatch/index/memory"
	"github.com/barmatch/barmatch/intent"
	"github.com/barmatch/barmatch/rank"
	"github.com/barmatch/barmatch/session"
	"github.com/barmatch/barmatch/storage"
	"github.com/barmatch/barmatch/storage/badger"
)

// Matcher is the top-level handle: storage, search index, AI provider, and
// the matching pipeline, wired together.
type Matcher struct {
	backend     *badger.Backend
	profileRepo storage.ProfileRepository
	userRepo    storage.UserRepository
	index       *memory.Memory
	provider    ai.Provider
	extractor   *intent.Extractor
	dispatcher  *dispatch.Dispatcher
	ranker      *rank.Ranker
	topK        int
	logger      *slog.Logger
}

// MatcherOption configures a Matcher.
type MatcherOption func(*matcherOptions)

type matcherOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	weights  rank.Weights
	inMemory bool
	topK     int
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(cfg *ai.Config) MatcherOption {
	return func(o *matcherOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider replaces the default OpenAI-compatible provider, e.g. with a
// mock for tests.
func WithProvider(provider ai.Provider) MatcherOption {
	return func(o *matcherOptions) {
		o.provider = provider
	}
}

// WithWeights replaces the default scoring weight table.
func WithWeights(weights rank.Weights) MatcherOption {
	return func(o *matcherOptions) {
		o.weights = weights
	}
}

// WithInMemoryStorage keeps all state in memory; the path is ignored.
func WithInMemoryStorage() MatcherOption {
	return func(o *matcherOptions) {
		o.inMemory = true
	}
}

// WithTopK sets how many results each turn returns.
func WithTopK(topK int) MatcherOption {
	return func(o *matcherOptions) {
		if topK > 0 {
			o.topK = topK
		}
	}
}

// NewMatcher opens storage at filePath, rebuilds the in-process search index
// from the stored profiles, and wires the matching pipeline.
func NewMatcher(filePath string, opts ...MatcherOption) (*Matcher, error) {
	options := &matcherOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	profileRepo, err := badger.NewProfileRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	userRepo, err := badger.NewUserRepository(backend)
	if err != nil {
		profileRepo.Close()
		backend.Close()
		return nil, err
	}

	idx, err := memory.New()
	if err != nil {
		userRepo.Close()
		profileRepo.Close()
		backend.Close()
		return nil, err
	}

	// The index is in-process; rebuild it from storage on startup.
	stored, err := profileRepo.ListProfiles(context.Background())
	if err == nil && len(stored) > 0 {
		err = idx.Upsert(stored...)
	}
	if err != nil {
		userRepo.Close()
		profileRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			userRepo.Close()
			profileRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	m := &Matcher{
		backend:     backend,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		index:       idx,
		provider:    provider,
		topK:        options.topK,
		logger:      slog.Default(),
	}

	m.extractor, err = intent.NewExtractor(provider)
	if err != nil {
		m.Close()
		return nil, err
	}

	m.dispatcher, err = dispatch.NewDispatcher(idx)
	if err != nil {
		m.Close()
		return nil, err
	}

	rankOpts := []rank.Option{}
	if options.weights != nil {
		rankOpts = append(rankOpts, rank.WithWeights(options.weights))
	}
	m.ranker, err = rank.NewRanker(profileRepo, rankOpts...)
	if err != nil {
		m.Close()
		return nil, err
	}

	return m, nil
}

// Close releases the pipeline, the AI provider, and storage.
func (m *Matcher) Close() error {
	if m.dispatcher != nil {
		m.dispatcher.Release()
	}
	if err := m.provider.Close(); err != nil {
		m.logger.Error("error closing AI provider", "err", err)
	}
	if err := m.userRepo.Close(); err != nil {
		m.logger.Error("error closing user repository", "err", err)
		return err
	}
	if err := m.profileRepo.Close(); err != nil {
		m.logger.Error("error closing profile repository", "err", err)
		return err
	}
	if err := m.backend.Close(); err != nil {
		m.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ProfileRepository returns the profile store.
func (m *Matcher) ProfileRepository() storage.ProfileRepository {
	return m.profileRepo
}

// UserRepository returns the per-user state store.
func (m *Matcher) UserRepository() storage.UserRepository {
	return m.userRepo
}

// AddProfiles stores profiles and keeps the search index in sync.
func (m *Matcher) AddProfiles(ctx context.Context, profiles ...*core.Profile) ([]*core.Profile, error) {
	added, err := m.profileRepo.AddProfiles(ctx, profiles...)
	if err != nil {
		return nil, err
	}
	if err := m.index.Upsert(added...); err != nil {
		return nil, err
	}
	return added, nil
}

// NewSessionManager creates a session manager running on the matcher's
// pipeline.
func (m *Matcher) NewSessionManager(opts ...session.ManagerOption) (*session.Manager, error) {
	return session.NewManager(session.Config{
		Extractor:  m.extractor,
		Dispatcher: m.dispatcher,
		Ranker:     m.ranker,
		Narrator:   m.provider.Narrator(),
		Users:      m.userRepo,
		TopK:       m.topK,
	}, opts...)
}
